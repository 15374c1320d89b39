// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package reward

import (
	"context"
	"errors"
	"testing"

	"github.com/matuskalis/speaksharp-gamification/pkg/reward/mock"

	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclient/fulfillment"
	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclientmodels"
)

func TestEntitlementGranter_GrantItem(t *testing.T) {
	fulfiller := &mock.FulfillmentService{}
	g := NewEntitlementGranter(fulfiller, EntitlementGranterConfig{Namespace: "speaksharp"})

	if err := g.GrantItem(context.Background(), "user-1", "gem-pack", 3); err != nil {
		t.Fatalf("GrantItem() error = %v", err)
	}

	calls := fulfiller.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 fulfillment call, got %d", len(calls))
	}
	call := calls[0]
	if call.Namespace != "speaksharp" || call.UserID != "user-1" {
		t.Errorf("unexpected target %s/%s", call.Namespace, call.UserID)
	}
	if call.Body.ItemID != "gem-pack" || call.Body.Quantity == nil || *call.Body.Quantity != 3 {
		t.Errorf("unexpected body %+v", call.Body)
	}
	if call.Body.Source != platformclientmodels.FulfillmentRequestSourceREWARD {
		t.Errorf("expected REWARD source, got %s", call.Body.Source)
	}
}

func TestEntitlementGranter_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error)
	}{
		{"platform error", func(*fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error) {
			return nil, errors.New("forbidden")
		}},
		{"empty response", func(*fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error) {
			return nil, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewEntitlementGranter(&mock.FulfillmentService{FulfillItemFunc: tt.fn}, EntitlementGranterConfig{})
			if err := g.GrantItem(context.Background(), "user-1", "gem-pack", 1); err == nil {
				t.Error("expected error")
			}
		})
	}
}
