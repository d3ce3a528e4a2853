package catalog_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/booklib/internal/catalog"
	"github.com/calvinalkan/booklib/internal/fs"
)

// Random adds and removes against a filesystem that fails writes. After
// every operation, memory and disk must both match a model that only applies
// operations that reported success.
func Test_Library_Stays_Consistent_Under_Write_Faults(t *testing.T) {
	t.Parallel()

	for seed := range uint64(10) {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t)
			chaos := fs.NewChaos(fs.NewReal(), seed, fs.ChaosConfig{WriteFailRate: 0.3})

			lib, err := catalog.Open(cfg, chaos)
			require.NoError(t, err)

			t.Cleanup(func() { _ = lib.Close() })

			chaos.SetMode(fs.ChaosModeInject)

			rng := rand.New(rand.NewPCG(seed, 99))

			var model []catalog.Book

			for op := range 300 {
				id := rng.IntN(30)
				idx := slices.IndexFunc(model, func(b catalog.Book) bool { return b.ID == id })

				if rng.IntN(2) == 0 {
					b := catalog.Book{ID: id, Title: fmt.Sprintf("title-%d", rng.IntN(8)), Author: "a"}

					_, err = lib.Add(b.ID, b.Title, b.Author)

					switch {
					case err == nil:
						require.Equal(t, -1, idx, "op %d: Add succeeded on a taken id", op)
						model = append(model, b)
					case errors.Is(err, catalog.ErrDuplicateID):
						require.NotEqual(t, -1, idx, "op %d: unexpected duplicate", op)
					default:
						require.True(t, fs.IsInjected(err), "op %d: unexpected error %v", op, err)
					}
				} else {
					_, err = lib.Remove(id)

					switch {
					case err == nil:
						require.NotEqual(t, -1, idx, "op %d: Remove succeeded on a missing id", op)
						model = slices.Delete(model, idx, idx+1)
					case errors.Is(err, catalog.ErrNotFound):
						require.Equal(t, -1, idx, "op %d: unexpected not found", op)
					default:
						require.True(t, fs.IsInjected(err), "op %d: unexpected error %v", op, err)
					}
				}

				// Sticky faults would fail every later write.
				chaos.ResetAllPathStates()

				assertMatchesModel(t, lib, cfg, model)
			}

			require.Positive(t, chaos.Stats().WriteFails, "no faults injected")

			chaos.SetMode(fs.ChaosModePassthrough)

			report, err := lib.Check()
			require.NoError(t, err)
			require.True(t, report.InSync())
		})
	}
}

func assertMatchesModel(t *testing.T, lib *catalog.Library, cfg catalog.Config, model []catalog.Book) {
	t.Helper()

	got := make([]catalog.Book, 0, lib.Len())
	for b := range lib.Ledger() {
		got = append(got, *b)
	}

	if diff := cmp.Diff(model, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("ledger mismatch (-model +got):\n%s", diff)
	}

	requireSizesAgree(t, lib, len(model))

	var want strings.Builder
	for _, b := range model {
		fmt.Fprintf(&want, "%d,%s,%s\n", b.ID, b.Title, b.Author)
	}

	data, err := os.ReadFile(cfg.DataFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want.String(), string(data)); diff != "" {
		t.Fatalf("data file mismatch (-model +disk):\n%s", diff)
	}
}
