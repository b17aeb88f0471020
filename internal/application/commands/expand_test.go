package commands

import (
	"context"
	"errors"
	"slices"
	"testing"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
)

type fakeExpander struct {
	got   []domain.VizID
	added domain.Elements
	err   error
}

func (f *fakeExpander) Expand(_ context.Context, ids []domain.VizID) (domain.Elements, error) {
	f.got = ids
	return f.added, f.err
}

func TestExpandCommand(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		want    []domain.VizID
		wantErr bool
	}{
		{
			name: "serialized ids",
			ids:  []string{"core:A", "terminal:t1"},
			want: []domain.VizID{domain.NewVizID("A"), {ID: "t1", Store: domain.StoreTerminal}},
		},
		{
			name: "bare name with colon",
			ids:  []string{"Meeting: Q3"},
			want: []domain.VizID{domain.NewVizID("Meeting: Q3")},
		},
		{
			name:    "no ids",
			wantErr: true,
		},
		{
			name:    "blank id",
			ids:     []string{"core:A", " "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &fakeExpander{added: domain.Elements{
				Nodes: []domain.NodeDefinition{{ID: "core:A"}, {ID: "core:B"}},
				Edges: []domain.EdgeDefinition{{ID: "core:A->core:B#0"}},
			}}
			result, err := NewExpandCommand(ws, tt.ids...).Execute(context.Background())

			if tt.wantErr {
				var ve *application.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if ws.got != nil {
					t.Error("workspace should not be called on invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(ws.got, tt.want) {
				t.Errorf("expanded %v, want %v", ws.got, tt.want)
			}
			if result.Added.Len() != 3 || result.Message == "" {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestExpandCommand_WorkspaceError(t *testing.T) {
	ws := &fakeExpander{err: application.ErrUnknownWorkspace}
	_, err := NewExpandCommand(ws, "A").Execute(context.Background())
	if !errors.Is(err, application.ErrUnknownWorkspace) {
		t.Errorf("expected wrapped workspace error, got %v", err)
	}
}
