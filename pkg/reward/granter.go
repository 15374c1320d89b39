// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package reward

import (
	"context"
	"errors"
	"fmt"

	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclient/fulfillment"
	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclientmodels"
)

// ItemGranter is an interface for granting items to users.
type ItemGranter interface {
	GrantItem(ctx context.Context, userID, itemID string, quantity int) error
}

// ItemFulfiller is the part of the AccelByte platform.FulfillmentService the
// granter uses.
type ItemFulfiller interface {
	FulfillItemShort(input *fulfillment.FulfillItemParams) (*platformclientmodels.FulfillmentResult, error)
}

// EntitlementGranter grants items through AccelByte Platform fulfillment.
type EntitlementGranter struct {
	fulfillmentClient ItemFulfiller
	cfg               EntitlementGranterConfig
}

type EntitlementGranterConfig struct {
	Namespace string
}

func NewEntitlementGranter(
	fulfillmentClient ItemFulfiller,
	cfg EntitlementGranterConfig,
) *EntitlementGranter {
	return &EntitlementGranter{
		fulfillmentClient: fulfillmentClient,
		cfg:               cfg,
	}
}

func (g *EntitlementGranter) GrantItem(ctx context.Context, userID, itemID string, quantity int) error {
	qnty := int32(quantity)

	input := &fulfillment.FulfillItemParams{
		Namespace: g.cfg.Namespace,
		UserID:    userID,
		Body: &platformclientmodels.FulfillmentRequest{
			ItemID:   itemID,
			Quantity: &qnty,
			Source:   platformclientmodels.FulfillmentRequestSourceREWARD,
		},
		Context: ctx,
	}

	fulfillmentResponse, err := g.fulfillmentClient.FulfillItemShort(input)
	if err != nil {
		return fmt.Errorf("failed to fulfill item: %w", err)
	}

	if fulfillmentResponse == nil {
		return errors.New("could not grant item to user: empty response")
	}

	return nil
}
