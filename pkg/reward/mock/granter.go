// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclient/fulfillment"
	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclientmodels"
)

// ItemGranter is a mock implementation of reward.ItemGranter for testing
type ItemGranter struct {
	// GrantItemFunc is called when GrantItem is invoked
	GrantItemFunc func(ctx context.Context, userID, itemID string, quantity int) error

	mu    sync.Mutex
	calls []GrantItemCall
}

// GrantItemCall tracks parameters for GrantItem calls
type GrantItemCall struct {
	UserID   string
	ItemID   string
	Quantity int
}

func (g *ItemGranter) GrantItem(ctx context.Context, userID, itemID string, quantity int) error {
	g.mu.Lock()
	g.calls = append(g.calls, GrantItemCall{UserID: userID, ItemID: itemID, Quantity: quantity})
	fn := g.GrantItemFunc
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, userID, itemID, quantity)
	}
	return nil
}

// Calls returns the GrantItem calls received so far.
func (g *ItemGranter) Calls() []GrantItemCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GrantItemCall(nil), g.calls...)
}

// FulfillmentService is a mock implementation of reward.ItemFulfiller for testing
type FulfillmentService struct {
	// FulfillItemFunc is called when FulfillItemShort is invoked
	FulfillItemFunc func(input *fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error)

	mu    sync.Mutex
	calls []*fulfillment.FulfillItemParams
}

func (f *FulfillmentService) FulfillItemShort(input *fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, input)
	fn := f.FulfillItemFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(input)
	}
	return &platformclientmodels.FulfillmentResult{}, nil
}

// Calls returns the FulfillItemShort inputs received so far.
func (f *FulfillmentService) Calls() []*fulfillment.FulfillItemParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fulfillment.FulfillItemParams(nil), f.calls...)
}
