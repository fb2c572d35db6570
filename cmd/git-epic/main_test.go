package main

import (
	"testing"
)

func TestCanRunWithoutGit(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{
			name: "no args",
			args: nil,
			want: true,
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: true,
		},
		{
			name: "subcommand help",
			args: []string{"sync", "-h"},
			want: true,
		},
		{
			name: "version flag",
			args: []string{"--version"},
			want: true,
		},
		{
			name: "help subcommand",
			args: []string{"help", "sync"},
			want: true,
		},
		{
			name: "sync",
			args: []string{"sync"},
			want: false,
		},
		{
			name: "epic add",
			args: []string{"epic", "add", "--title", "test"},
			want: false,
		},
		{
			name: "skill detect",
			args: []string{"skill", "detect", "debugging"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canRunWithoutGit(tt.args); got != tt.want {
				t.Fatalf("canRunWithoutGit(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
