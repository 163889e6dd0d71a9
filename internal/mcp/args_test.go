package mcp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

func TestArgsString(t *testing.T) {
	args := Args{"name": "smb", "num": float64(7), "null": nil}

	s, err := args.String("name")
	require.NoError(t, err)
	require.Equal(t, "smb", s)

	s, err = args.String("num")
	require.NoError(t, err)
	require.Equal(t, "7", s)

	s, err = args.String("null")
	require.NoError(t, err)
	require.Empty(t, s)

	s, err = args.String("absent")
	require.NoError(t, err)
	require.Empty(t, s)

	_, err = Args{"obj": map[string]any{}}.String("obj")

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "obj", verr.Field)
}

func TestArgsRequiredString(t *testing.T) {
	_, err := Args{}.RequiredString("module_name")
	require.ErrorIs(t, err, errors.ErrMissingArgument)

	_, err = Args{"module_name": ""}.RequiredString("module_name")
	require.ErrorIs(t, err, errors.ErrMissingArgument)

	s, err := Args{"module_name": "exploit/unix/ftp"}.RequiredString("module_name")
	require.NoError(t, err)
	require.Equal(t, "exploit/unix/ftp", s)
}

func TestArgsInt(t *testing.T) {
	tests := []struct {
		name    string
		args    Args
		want    int
		wantErr bool
	}{
		{name: "absent uses default", args: Args{}, want: 4444},
		{name: "json number", args: Args{"lport": float64(5555)}, want: 5555},
		{name: "numeric string", args: Args{"lport": "5555"}, want: 5555},
		{name: "fraction rejected", args: Args{"lport": 1.5}, wantErr: true},
		{name: "text rejected", args: Args{"lport": "high"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.args.Int("lport", 4444)
			if tt.wantErr {
				var verr *errors.ValidationError
				require.ErrorAs(t, err, &verr)
				require.Equal(t, "lport", verr.Field)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestArgsRequiredInt(t *testing.T) {
	_, err := Args{}.RequiredInt("session_id")
	require.ErrorIs(t, err, errors.ErrMissingArgument)

	n, err := Args{"session_id": float64(3)}.RequiredInt("session_id")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestArgsBool(t *testing.T) {
	b, err := Args{}.Bool("run_check", true)
	require.NoError(t, err)
	require.True(t, b)

	b, err = Args{"run_check": false}.Bool("run_check", true)
	require.NoError(t, err)
	require.False(t, b)

	b, err = Args{"run_check": "false"}.Bool("run_check", true)
	require.NoError(t, err)
	require.False(t, b)

	_, err = Args{"run_check": "maybe"}.Bool("run_check", true)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
}
