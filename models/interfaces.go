package models

import "context"

type PredictionClient interface {
	Predict(ctx context.Context, nctid string) (*PredictResponse, error)
}

type LookupJournal interface {
	RecordLookup(ctx context.Context, rec LookupRecord) error
}
