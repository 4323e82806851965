package model

import (
	"encoding/json"
	"testing"
)

func TestValueJSONIntegersAreStrings(t *testing.T) {
	v := TupleValue(
		Field{Name: "amount", Value: IntValue("115792089237316195423570985008687907853269984665640564039457584007913129639935")},
		Field{Name: "ok", Value: BoolValue(true)},
		Field{Name: "ids", Value: ArrayValue(IntValue("1"), IntValue("-2"))},
	)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"amount":"115792089237316195423570985008687907853269984665640564039457584007913129639935","ok":true,"ids":["1","-2"]}`
	if string(data) != want {
		t.Fatalf("json mismatch: %s != %s", data, want)
	}
}

func TestValueEmptyArray(t *testing.T) {
	data, err := json.Marshal(ArrayValue())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [], got %s", data)
	}
}
