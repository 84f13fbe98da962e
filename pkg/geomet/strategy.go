package geomet

import "hydromap/pkg/geo"

// attempt executes one query against the data API.
type attempt func() (*geo.FeatureCollection, error)

// runWithFallback composes the two-step query strategy. The primary
// attempt runs first; when it fails, or succeeds with a result the
// accept check rejects (the server ignored the filter), the fallback
// attempt runs instead. Primary errors are reported through onFallback
// and never returned; a fallback error is returned as-is. usedFallback
// tells the caller whether the returned collection still needs local
// filtering.
func runWithFallback(primary, fallback attempt, accept func(*geo.FeatureCollection) bool, onFallback func(reason string, err error)) (fc *geo.FeatureCollection, usedFallback bool, err error) {
	fc, err = primary()
	if err == nil && accept(fc) {
		return fc, false, nil
	}

	if err != nil {
		onFallback("primary query failed", err)
	} else {
		onFallback("server-side filter not honored", nil)
	}

	fc, err = fallback()
	if err != nil {
		return nil, true, err
	}
	return fc, true, nil
}
