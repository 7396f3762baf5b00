package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Command
	}{
		{
			name: "english complete",
			text: "complete TKT-20260901-001",
			want: Command{Action: ActionComplete, Number: "TKT-20260901-001"},
		},
		{
			name: "spanish alias",
			text: "listo tkt-20260901-001",
			want: Command{Action: ActionComplete, Number: "TKT-20260901-001"},
		},
		{
			name: "mixed case keyword",
			text: "  COMPLETE tkt-20260901-007  ",
			want: Command{Action: ActionComplete, Number: "TKT-20260901-007"},
		},
		{
			name: "hold with detail",
			text: "repuestos TKT-20260901-002 espero la placa madre",
			want: Command{Action: ActionHold, Number: "TKT-20260901-002", Detail: "espero la placa madre"},
		},
		{
			name: "problem with detail",
			text: "problema TKT-20260901-003 volvió a fallar",
			want: Command{Action: ActionProblem, Number: "TKT-20260901-003", Detail: "volvió a fallar"},
		},
		{
			name: "resume",
			text: "retomo TKT-20260901-002",
			want: Command{Action: ActionStart, Number: "TKT-20260901-002"},
		},
		{
			name: "status needs no number",
			text: "estado",
			want: Command{Action: ActionStatus},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCommand(tc.text)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCommandRejectsNonCommands(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"no enciende la autoclave de clinica norte",
		"gracias!",
	} {
		_, err := ParseCommand(text)
		assert.ErrorIs(t, err, ErrNotCommand, "text %q", text)
	}
}

func TestParseCommandRequiresNumber(t *testing.T) {
	for _, text := range []string{"listo", "hold", "problema"} {
		_, err := ParseCommand(text)
		assert.ErrorIs(t, err, ErrMissingNumber, "text %q", text)
	}
}
