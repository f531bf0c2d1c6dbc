package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunchStatus_Label(t *testing.T) {
	assert.Equal(t, "OPEN", PunchOpen.Label())
	assert.Equal(t, "IN PROGRESS", PunchInProgress.Label())
	assert.Equal(t, "DONE", PunchDone.Label())
	assert.False(t, PunchStatus("closed").Valid())
}

func TestDailyReport_ActivityLines(t *testing.T) {
	r := DailyReport{Activities: "Track laying\r\n\n  Concrete ties \n"}
	assert.Equal(t, []string{"Track laying", "Concrete ties"}, r.ActivityLines())
}

func TestValue_JSONDecodesScalars(t *testing.T) {
	var vals map[string]Value
	require.NoError(t, json.Unmarshal([]byte(`{"a":"ok","b":12.5,"c":true,"d":null}`), &vals))

	assert.Equal(t, KindText, vals["a"].Kind())
	assert.Equal(t, "ok", vals["a"].String())
	assert.Equal(t, KindNumber, vals["b"].Kind())
	assert.Equal(t, "12.5", vals["b"].String())
	b, ok := vals["c"].Bool()
	assert.True(t, ok)
	assert.True(t, b)
	assert.True(t, vals["d"].IsZero())
}

func TestValue_RejectsObjects(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"x":1}`), &v)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMissingRequired(t *testing.T) {
	tpl := ChecklistTemplate{Fields: []ChecklistField{
		{Key: "gauge", Required: true},
		{Key: "notes"},
		{Key: "signed", Required: true},
	}}
	sub := ChecklistSubmission{Values: map[string]Value{"gauge": NumberValue(1435)}}
	assert.Equal(t, []string{"signed"}, MissingRequired(tpl, sub))
}
