package geomet

import (
	"errors"
	"testing"

	"hydromap/pkg/geo"
)

func TestRunWithFallback(t *testing.T) {
	okCollection := &geo.FeatureCollection{Type: "FeatureCollection"}
	acceptAll := func(*geo.FeatureCollection) bool { return true }
	rejectAll := func(*geo.FeatureCollection) bool { return false }

	t.Run("Primary_Accepted", func(t *testing.T) {
		fallbackRan := false
		fc, usedFallback, err := runWithFallback(
			func() (*geo.FeatureCollection, error) { return okCollection, nil },
			func() (*geo.FeatureCollection, error) { fallbackRan = true; return nil, nil },
			acceptAll,
			func(string, error) { t.Error("onFallback must not fire when primary is accepted") },
		)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if usedFallback || fallbackRan {
			t.Error("Fallback must not run when primary is accepted")
		}
		if fc != okCollection {
			t.Error("Expected the primary result")
		}
	})

	t.Run("Primary_Error_Triggers_Fallback", func(t *testing.T) {
		var reason string
		var reported error
		primaryErr := errors.New("timeout")

		fc, usedFallback, err := runWithFallback(
			func() (*geo.FeatureCollection, error) { return nil, primaryErr },
			func() (*geo.FeatureCollection, error) { return okCollection, nil },
			acceptAll,
			func(r string, e error) { reason, reported = r, e },
		)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !usedFallback || fc != okCollection {
			t.Error("Expected the fallback result")
		}
		if reason != "primary query failed" || reported != primaryErr {
			t.Errorf("Expected primary failure report, got %q / %v", reason, reported)
		}
	})

	t.Run("Rejected_Primary_Triggers_Fallback", func(t *testing.T) {
		var reason string
		_, usedFallback, err := runWithFallback(
			func() (*geo.FeatureCollection, error) { return okCollection, nil },
			func() (*geo.FeatureCollection, error) { return okCollection, nil },
			rejectAll,
			func(r string, e error) { reason = r },
		)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !usedFallback {
			t.Error("Expected fallback after rejection")
		}
		if reason != "server-side filter not honored" {
			t.Errorf("Unexpected reason %q", reason)
		}
	})

	t.Run("Fallback_Error_Is_Returned", func(t *testing.T) {
		fallbackErr := errors.New("still down")
		_, _, err := runWithFallback(
			func() (*geo.FeatureCollection, error) { return nil, errors.New("down") },
			func() (*geo.FeatureCollection, error) { return nil, fallbackErr },
			acceptAll,
			func(string, error) {},
		)
		if err != fallbackErr {
			t.Fatalf("Expected the fallback error, got %v", err)
		}
	})
}
