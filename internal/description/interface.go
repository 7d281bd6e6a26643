package description

import "context"

type Describer interface {
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)
	IsAvailable(ctx context.Context) bool
}
