package types

// PredictRequest is the body of a scoring request. Latitude and
// longitude are pointers so that 0 is a valid coordinate under the
// required binding.
type PredictRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Month     int      `json:"month" binding:"required,min=1,max=12"`
}

// ExplainRequest is the body of an attribution request
type ExplainRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Month     int      `json:"month" binding:"required,min=1,max=12"`
}

// ScoreRangeUpdate is one dimension's recalibrated raw range
type ScoreRangeUpdate struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScoreRangesRequest is the body of an admin recalibration request,
// keyed by dimension name.
type ScoreRangesRequest struct {
	Ranges map[string]ScoreRangeUpdate `json:"ranges" binding:"required"`
}

// ScoreRangesResponse confirms a recalibration
type ScoreRangesResponse struct {
	Version int    `json:"version"`
	Message string `json:"message"`
}

// HistoryQuery carries the query parameters of a history listing
type HistoryQuery struct {
	Limit int `form:"limit"`
}
