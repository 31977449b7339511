package process

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeInspector struct {
	children map[int][]int
	names    map[int]string
	calls    int
}

func (f *fakeInspector) Children(_ context.Context, pid int) ([]int, error) {
	f.calls++
	kids, ok := f.children[pid]
	if !ok {
		return nil, fmt.Errorf("no such process %d", pid)
	}
	return kids, nil
}

func (f *fakeInspector) Name(_ context.Context, pid int) (string, error) {
	name, ok := f.names[pid]
	if !ok {
		return "", fmt.Errorf("no such process %d", pid)
	}
	return name, nil
}

func TestTreeContains(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		inspector *fakeInspector
		root      int
		want      bool
	}{
		{
			name: "direct child",
			inspector: &fakeInspector{
				children: map[int][]int{10: {11}, 11: {}},
				names:    map[int]string{10: "zsh", 11: "claude"},
			},
			root: 10,
			want: true,
		},
		{
			name: "grandchild through node",
			inspector: &fakeInspector{
				children: map[int][]int{10: {11}, 11: {12}, 12: {}},
				names:    map[int]string{10: "zsh", 11: "bash", 12: "node"},
			},
			root: 10,
			want: true,
		},
		{
			name: "root itself is not considered",
			inspector: &fakeInspector{
				children: map[int][]int{10: {}},
				names:    map[int]string{10: "claude"},
			},
			root: 10,
			want: false,
		},
		{
			name: "no assistant anywhere",
			inspector: &fakeInspector{
				children: map[int][]int{10: {11, 12}, 11: {}, 12: {}},
				names:    map[int]string{10: "zsh", 11: "vim", 12: "less"},
			},
			root: 10,
			want: false,
		},
		{
			name: "lookup failure prunes",
			inspector: &fakeInspector{
				children: map[int][]int{},
				names:    map[int]string{},
			},
			root: 10,
			want: false,
		},
		{
			name: "invalid root",
			inspector: &fakeInspector{},
			root:      0,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TreeContains(ctx, tt.inspector, tt.root, "claude", "node"))
		})
	}
}

func TestTreeContainsTerminatesOnCycle(t *testing.T) {
	inspector := &fakeInspector{
		children: map[int][]int{10: {11}, 11: {12}, 12: {10, 11}},
		names:    map[int]string{10: "zsh", 11: "bash", 12: "sh"},
	}
	assert.False(t, TreeContains(context.Background(), inspector, 10, "claude", "node"))
	assert.Equal(t, 3, inspector.calls)
}

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.False(t, IsProcessAlive(0))
	assert.False(t, IsProcessAlive(-1))
}
