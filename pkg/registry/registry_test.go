package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShipped(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func validActivity(id, taskType string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Build",
		Category:    "eligibility",
		TaskType:    taskType,
		Timeout:     "10s",
		InputSchema: map[string]interface{}{"type": "object"},
	}
}

func TestLoadRegistry_ShippedRegistryIsValid(t *testing.T) {
	reg := loadShipped(t)

	assert.Len(t, reg.Activities, 2)
	assert.NoError(t, reg.Validate())

	a, ok := reg.FindByTaskType("build-scheme-report")
	require.True(t, ok)
	assert.Equal(t, "scheme.report.build", a.ID)

	_, ok = reg.FindByTaskType("unknown")
	assert.False(t, ok)
}

func TestInputSchema_ValidatesJobVariables(t *testing.T) {
	reg := loadShipped(t)

	schema, err := reg.InputSchema("build-scheme-report")
	require.NoError(t, err)
	require.NotNil(t, schema)

	res, err := schema.ValidateInput(map[string]interface{}{
		"userProfile": map[string]interface{}{
			"state": "Kerala", "age": 30,
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = schema.ValidateInput(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	_, err = reg.InputSchema("missing")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		acts    []Activity
		wantErr string
	}{
		{
			name:    "empty",
			acts:    nil,
			wantErr: "no activities",
		},
		{
			name:    "duplicate id",
			acts:    []Activity{validActivity("scheme.report.build", "a"), validActivity("scheme.report.build", "b")},
			wantErr: "duplicate activity ID: scheme.report.build",
		},
		{
			name:    "duplicate task type",
			acts:    []Activity{validActivity("scheme.report.build", "a"), validActivity("scheme.report.notify", "a")},
			wantErr: "duplicate task type: a",
		},
		{
			name:    "bad naming",
			acts:    []Activity{validActivity("BuildReport", "a")},
			wantErr: "activity BuildReport",
		},
		{
			name: "bad timeout",
			acts: func() []Activity {
				a := validActivity("scheme.report.build", "a")
				a.Timeout = "soon"
				return []Activity{a}
			}(),
			wantErr: `invalid timeout "soon"`,
		},
		{
			name: "schema does not compile",
			acts: func() []Activity {
				a := validActivity("scheme.report.build", "a")
				a.InputSchema = map[string]interface{}{"type": 42}
				return []Activity{a}
			}(),
			wantErr: "inputSchema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.acts}
			err := reg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateFieldAndSave(t *testing.T) {
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{validActivity("scheme.report.build", "build-scheme-report")}}

	require.NoError(t, reg.UpdateField("scheme.report.build", "retries", "5"))
	require.NoError(t, reg.UpdateField("scheme.report.build", "status", "deprecated"))
	assert.Error(t, reg.UpdateField("scheme.report.build", "retries", "many"))
	assert.Error(t, reg.UpdateField("scheme.report.build", "timeout", "later"))
	assert.Error(t, reg.UpdateField("scheme.report.build", "color", "red"))
	assert.Error(t, reg.UpdateField("scheme.report.nope", "status", "x"))
	assert.NotEmpty(t, reg.LastUpdated)

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Activities[0].Retries)
	assert.Equal(t, "deprecated", loaded.Activities[0].ImplementationStatus)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}
