package playback_test

import (
	"context"
	"os/exec"
	"testing"

	"channelsurfer/internal/playback"
)

func TestNewCommandPlayer(t *testing.T) {
	if _, err := playback.NewCommandPlayer("   "); err == nil {
		t.Fatal("expected error for empty command")
	}
	player, err := playback.NewCommandPlayer("mpv --fs  --loop")
	if err != nil {
		t.Fatalf("NewCommandPlayer: %v", err)
	}
	if player.Binary != "mpv" || len(player.Args) != 2 || player.Args[1] != "--loop" {
		t.Fatalf("unexpected player: %#v", player)
	}
}

func TestCommandPlayerExitStatus(t *testing.T) {
	for _, bin := range []string{"true", "false"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not available: %v", bin, err)
		}
	}
	ok := &playback.CommandPlayer{Binary: "true"}
	if err := ok.Play(context.Background(), "/tmp/video.mp4"); err != nil {
		t.Fatalf("Play with true: %v", err)
	}
	failing := &playback.CommandPlayer{Binary: "false"}
	if err := failing.Play(context.Background(), "/tmp/video.mp4"); err == nil {
		t.Fatal("expected error from failing player")
	}
}
