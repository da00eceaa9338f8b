package tursokv

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
)

// driverEnv opens drivers against one fresh backing store. Drivers opened
// from the same env share data when shared is true.
type driverEnv struct {
	open   func(t *testing.T, base string) Driver
	shared bool
}

// testDriver runs the behavior every Driver must provide.
func testDriver(t *testing.T, base string, newEnv func(t *testing.T) driverEnv) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		if err := d.SetItem(ctx, "a", "1", 0); err != nil {
			t.Fatalf("SetItem: %v", err)
		}
		assertValue(t, d, "a", "1")
		assertHas(t, d, "a", true)

		if err := d.RemoveItem(ctx, "a"); err != nil {
			t.Fatalf("RemoveItem: %v", err)
		}
		assertMissing(t, d, "a")
		assertHas(t, d, "a", false)
	})

	t.Run("missing key", func(t *testing.T) {
		d := newEnv(t).open(t, base)
		assertMissing(t, d, "nope")
		assertHas(t, d, "nope", false)
	})

	t.Run("set is idempotent", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		for i := 0; i < 2; i++ {
			if err := d.SetItem(ctx, "k", "v", 0); err != nil {
				t.Fatalf("SetItem #%d: %v", i, err)
			}
		}
		assertValue(t, d, "k", "v")
		assertKeys(t, d, "", "k")
	})

	t.Run("set overwrites", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		_ = d.SetItem(ctx, "k", "old", 0)
		if err := d.SetItem(ctx, "k", "new", 0); err != nil {
			t.Fatalf("SetItem: %v", err)
		}
		assertValue(t, d, "k", "new")
	})

	t.Run("empty and special values", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		values := map[string]string{
			"empty":   "",
			"json":    `{"a":[1,2]}`,
			"quote":   "it's \"quoted\"",
			"unicode": "héllo 世界",
		}
		for k, v := range values {
			if err := d.SetItem(ctx, k, v, 0); err != nil {
				t.Fatalf("SetItem(%q): %v", k, err)
			}
		}
		for k, v := range values {
			assertValue(t, d, k, v)
		}
	})

	t.Run("get keys", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		for _, k := range []string{"a", "b", "c"} {
			if err := d.SetItem(ctx, k, "x", 0); err != nil {
				t.Fatalf("SetItem(%q): %v", k, err)
			}
		}
		assertKeys(t, d, "", "a", "b", "c")
	})

	t.Run("get keys with sub prefix", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		for _, k := range []string{"s1:a", "s1:b", "s2:a", "t"} {
			_ = d.SetItem(ctx, k, "x", 0)
		}
		assertKeys(t, d, "s1:", "s1:a", "s1:b")
		assertKeys(t, d, "s", "s1:a", "s1:b", "s2:a")
		assertKeys(t, d, "missing")
	})

	t.Run("clear", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		for _, k := range []string{"s1:a", "s1:b", "s2:a"} {
			_ = d.SetItem(ctx, k, "x", 0)
		}
		if err := d.Clear(ctx, "s1:"); err != nil {
			t.Fatalf("Clear(s1:): %v", err)
		}
		assertKeys(t, d, "", "s2:a")

		if err := d.Clear(ctx, ""); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		assertKeys(t, d, "")
	})

	t.Run("absent removals are no-ops", func(t *testing.T) {
		d := newEnv(t).open(t, base)

		_ = d.SetItem(ctx, "keep", "1", 0)
		if err := d.RemoveItem(ctx, "nope"); err != nil {
			t.Errorf("RemoveItem absent: %v", err)
		}
		if err := d.Clear(ctx, "nope"); err != nil {
			t.Errorf("Clear absent: %v", err)
		}
		assertKeys(t, d, "", "keep")
	})

	t.Run("namespace isolation", func(t *testing.T) {
		env := newEnv(t)
		if !env.shared {
			t.Skip("driver instances do not share storage")
		}
		ns1 := env.open(t, base+"ns1")
		ns2 := env.open(t, base+"ns2")
		root := env.open(t, "")

		_ = ns1.SetItem(ctx, "x", "v1", 0)
		_ = root.SetItem(ctx, "x", "root", 0)

		assertMissing(t, ns2, "x")
		assertHas(t, ns2, "x", false)
		assertKeys(t, ns2, "")
		assertValue(t, ns1, "x", "v1")

		_ = ns2.SetItem(ctx, "y", "v2", 0)
		if err := ns1.Clear(ctx, ""); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		assertKeys(t, ns1, "")
		assertValue(t, ns2, "y", "v2")
		assertValue(t, root, "x", "root")
		assertValue(t, root, base+"ns2:y", "v2")
	})

	t.Run("operations after dispose", func(t *testing.T) {
		d := newEnv(t).open(t, base)
		_ = d.SetItem(ctx, "k", "v", 0)

		if err := d.Dispose(); err != nil {
			t.Fatalf("Dispose: %v", err)
		}
		if err := d.Dispose(); err != nil {
			t.Errorf("second Dispose: %v", err)
		}

		if _, err := d.HasItem(ctx, "k"); !errors.Is(err, ErrDisposed) {
			t.Errorf("HasItem = %v, want ErrDisposed", err)
		}
		if _, _, err := d.GetItem(ctx, "k"); !errors.Is(err, ErrDisposed) {
			t.Errorf("GetItem = %v, want ErrDisposed", err)
		}
		if err := d.SetItem(ctx, "k", "v", 0); !errors.Is(err, ErrDisposed) {
			t.Errorf("SetItem = %v, want ErrDisposed", err)
		}
		if err := d.RemoveItem(ctx, "k"); !errors.Is(err, ErrDisposed) {
			t.Errorf("RemoveItem = %v, want ErrDisposed", err)
		}
		if _, err := d.GetKeys(ctx, ""); !errors.Is(err, ErrDisposed) {
			t.Errorf("GetKeys = %v, want ErrDisposed", err)
		}
		if err := d.Clear(ctx, ""); !errors.Is(err, ErrDisposed) {
			t.Errorf("Clear = %v, want ErrDisposed", err)
		}
	})

	t.Run("bases with LIKE wildcards", func(t *testing.T) {
		env := newEnv(t)
		if !env.shared {
			t.Skip("driver instances do not share storage")
		}
		short := env.open(t, base+"ab")
		_ = short.SetItem(ctx, "", "v", 0)
		_ = env.open(t, base+"axb").SetItem(ctx, "k", "v", 0)
		_ = env.open(t, base+"AB").SetItem(ctx, "k", "v", 0)

		for _, b := range []string{base + "a%b", base + "a_b"} {
			d := env.open(t, b)
			assertKeys(t, d, "")

			_ = d.SetItem(ctx, "own", "1", 0)
			assertKeys(t, d, "", "own")
			if err := d.RemoveItem(ctx, "own"); err != nil {
				t.Fatalf("RemoveItem: %v", err)
			}
		}
		assertKeys(t, short, "", "")
	})
}

func assertValue(t *testing.T, d Driver, key, want string) {
	t.Helper()
	got, ok, err := d.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("GetItem(%q): %v", key, err)
	}
	if !ok {
		t.Fatalf("GetItem(%q) missing, want %q", key, want)
	}
	if got != want {
		t.Errorf("GetItem(%q) = %q, want %q", key, got, want)
	}
}

func assertMissing(t *testing.T, d Driver, key string) {
	t.Helper()
	got, ok, err := d.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("GetItem(%q): %v", key, err)
	}
	if ok {
		t.Errorf("GetItem(%q) = %q, want missing", key, got)
	}
}

func assertHas(t *testing.T, d Driver, key string, want bool) {
	t.Helper()
	got, err := d.HasItem(context.Background(), key)
	if err != nil {
		t.Fatalf("HasItem(%q): %v", key, err)
	}
	if got != want {
		t.Errorf("HasItem(%q) = %v, want %v", key, got, want)
	}
}

func assertKeys(t *testing.T, d Driver, subPrefix string, want ...string) {
	t.Helper()
	got, err := d.GetKeys(context.Background(), subPrefix)
	if err != nil {
		t.Fatalf("GetKeys(%q): %v", subPrefix, err)
	}
	sort.Strings(got)
	sort.Strings(want)
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetKeys(%q) = %v, want %v", subPrefix, got, want)
	}
}
