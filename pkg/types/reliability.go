package types

// ExponentialRequest is the body of POST /reliability/exponential.
type ExponentialRequest struct {
	FailureRate float64 `json:"failure_rate"`
	MissionTime float64 `json:"mission_time"`
}

// ReliabilityResponse is returned by the exponential, series and k-of-n
// endpoints.
type ReliabilityResponse struct {
	Reliability float64 `json:"reliability"`
}

// MTBFRequest is the body of POST /reliability/mtbf-convert.
type MTBFRequest struct {
	Value float64 `json:"value"`
}

// MTBFResponse holds the reciprocal of the request value.
type MTBFResponse struct {
	ConvertedValue float64 `json:"converted_value"`
}

// SeriesRequest is the body of POST /reliability/series.
type SeriesRequest struct {
	ComponentReliabilities []float64 `json:"component_reliabilities"`
}

// KofNRequest is the body of POST /reliability/kofn.
type KofNRequest struct {
	ComponentReliabilities []float64 `json:"component_reliabilities"`
	MinRequired            int       `json:"min_required"`
}
