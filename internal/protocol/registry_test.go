package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	c := &xantechCodec{name: "custom"}

	if r.Has("custom") {
		t.Fatalf("Has() = true on empty registry")
	}
	r.Register("custom", c)

	got, err := r.Get("custom")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != Codec(c) {
		t.Errorf("Get() returned a different codec")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("Get(missing) error = %v, want ErrUnknownProtocol", err)
	}
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	want := []string{"acurus", "dayton", "xantech", "zpr68"}
	if got := Default().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
