package playback

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"channelsurfer/internal/textutil"
)

// Player opens a media file and returns when playback ends.
type Player interface {
	Play(ctx context.Context, path string) error
}

// CommandPlayer runs an external player such as mpv with the file path as
// its last argument.
type CommandPlayer struct {
	Binary string
	Args   []string
}

// NewCommandPlayer parses a command line like "mpv --fs" into a player.
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("player command must not be empty")
	}
	return &CommandPlayer{Binary: fields[0], Args: fields[1:]}, nil
}

// Play runs the player and waits for it to exit.
func (p *CommandPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string(nil), p.Args...), path)
	cmd := exec.CommandContext(ctx, p.Binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := textutil.Truncate(textutil.CollapseWhitespace(string(output)), 200)
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", p.Binary, err, detail)
		}
		return fmt.Errorf("%s: %w", p.Binary, err)
	}
	return nil
}
