package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	vars := map[string]any{
		"framework": "fastapi",
		"use_db":    true,
		"port":      8080,
		"features":  []any{"auth", "metrics"},
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equals match", Condition{"framework", Equals, "fastapi"}, true},
		{"equals mismatch", Condition{"framework", Equals, "flask"}, false},
		{"equals bool", Condition{"use_db", Equals, true}, true},
		{"equals int against float", Condition{"port", Equals, 8080.0}, true},
		{"equals int against string", Condition{"port", Equals, "8080"}, false},
		{"not_equals", Condition{"framework", NotEquals, "flask"}, true},
		{"in list", Condition{"framework", In, []any{"flask", "fastapi"}}, true},
		{"in typed list", Condition{"framework", In, []string{"flask"}}, false},
		{"in non-list defaults false", Condition{"framework", In, "fastapi"}, false},
		{"not_in list", Condition{"framework", NotIn, []any{"django"}}, true},
		{"not_in non-list defaults true", Condition{"framework", NotIn, "fastapi"}, true},
		{"contains substring", Condition{"framework", Contains, "api"}, true},
		{"contains stringified list", Condition{"features", Contains, "auth"}, true},
		{"not_contains", Condition{"framework", NotContains, "django"}, true},
		{"unknown operator is permissive", Condition{"framework", Operator("matches"), "x"}, true},
		{"missing variable is false", Condition{"ghost", Equals, "x"}, false},
		{"missing variable is false for negations", Condition{"ghost", NotEquals, "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cond, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_EmptyVariableIsFault(t *testing.T) {
	_, err := Evaluate(Condition{Operator: Equals, Value: 1}, map[string]any{})
	assert.Error(t, err)
}

func TestEvaluateAllAny(t *testing.T) {
	vars := map[string]any{"a": true, "b": false}
	yes := Condition{"a", Equals, true}
	no := Condition{"b", Equals, true}

	all, err := EvaluateAll([]Condition{yes, yes}, vars)
	require.NoError(t, err)
	assert.True(t, all)

	all, err = EvaluateAll([]Condition{yes, no}, vars)
	require.NoError(t, err)
	assert.False(t, all)

	anyOK, err := EvaluateAny([]Condition{no, yes}, vars)
	require.NoError(t, err)
	assert.True(t, anyOK)

	anyOK, err = EvaluateAny([]Condition{no}, vars)
	require.NoError(t, err)
	assert.False(t, anyOK)

	all, err = EvaluateAll(nil, vars)
	require.NoError(t, err)
	assert.True(t, all)
}

func TestOperatorValid(t *testing.T) {
	for _, op := range Operators() {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, Operator("regex").Valid())
	assert.False(t, Operator("").Valid())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(int64(3), 3))
	assert.True(t, Equal([]any{"a"}, []any{"a"}))
	assert.False(t, Equal(true, "true"))
	assert.False(t, Equal(1, "1"))
	assert.True(t, Equal(nil, nil))
}
