package core

import (
	"context"
	"strings"
)

func (c *Client) AddInfoUser(ctx context.Context, req AddUserRequest) (Result, error) {
	return c.Invoke(ctx, OpInfoAdd, req.args())
}

func (c *Client) InfoMFA(ctx context.Context, req MFARequest) (Result, error) {
	return c.Invoke(ctx, OpInfoMFA, req.args())
}

func (c *Client) UpdateInfoUser(ctx context.Context, req UpdateUserRequest) (Result, error) {
	return c.Invoke(ctx, OpInfoUpdate, req.args())
}

func (c *Client) DeleteInfoUser(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpInfoDelete, Args{"access_token": accessToken})
}

// GetInfoData reads identity/get.
func (c *Client) GetInfoData(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpInfoGet, Args{"access_token": accessToken})
}

func (c *Client) AddIncomeUser(ctx context.Context, req AddUserRequest) (Result, error) {
	return c.Invoke(ctx, OpIncomeAdd, req.args())
}

func (c *Client) IncomeMFA(ctx context.Context, req MFARequest) (Result, error) {
	return c.Invoke(ctx, OpIncomeMFA, req.args())
}

func (c *Client) UpdateIncomeUser(ctx context.Context, req UpdateUserRequest) (Result, error) {
	return c.Invoke(ctx, OpIncomeUpdate, req.args())
}

func (c *Client) DeleteIncomeUser(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpIncomeDelete, Args{"access_token": accessToken})
}

func (c *Client) GetIncomeData(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpIncomeGet, Args{"access_token": accessToken})
}

func (c *Client) AddRiskUser(ctx context.Context, req AddUserRequest) (Result, error) {
	return c.Invoke(ctx, OpRiskAdd, req.args())
}

func (c *Client) RiskMFA(ctx context.Context, req MFARequest) (Result, error) {
	return c.Invoke(ctx, OpRiskMFA, req.args())
}

func (c *Client) UpdateRiskUser(ctx context.Context, req UpdateUserRequest) (Result, error) {
	return c.Invoke(ctx, OpRiskUpdate, req.args())
}

func (c *Client) DeleteRiskUser(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpRiskDelete, Args{"access_token": accessToken})
}

func (c *Client) GetRiskData(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpRiskGet, Args{"access_token": accessToken})
}

// GetBalances reads live balances, optionally limited to accountIDs.
func (c *Client) GetBalances(ctx context.Context, accessToken string, accountIDs ...string) (Result, error) {
	return c.Invoke(ctx, OpBalanceGet, Args{
		"access_token": accessToken,
		"account_ids":  accountIDs,
	})
}

// Products lists the product families that share the add, mfa, update,
// delete and get lifecycle.
var Products = []string{"auth", "connect", "info", "income", "risk"}

// ProductOperation returns the operation name for action on product, for
// example ProductOperation("income", "mfa") is "income.mfa".
func ProductOperation(product string, action string) (string, error) {
	product = strings.ToLower(strings.TrimSpace(product))
	action = strings.ToLower(strings.TrimSpace(action))
	for _, known := range Products {
		if known == product {
			return product + "." + action, nil
		}
	}
	return "", badInputError("core: unknown product "+product, map[string]any{"product": product})
}

// MFAStep answers a challenge for any product family.
func (c *Client) MFAStep(ctx context.Context, product string, req MFARequest) (Result, error) {
	name, err := ProductOperation(product, "mfa")
	if err != nil {
		return Result{}, c.mapError(err)
	}
	return c.Invoke(ctx, name, req.args())
}

// DeleteUser removes the user from product.
func (c *Client) DeleteUser(ctx context.Context, product string, accessToken string) (Result, error) {
	name, err := ProductOperation(product, "delete")
	if err != nil {
		return Result{}, c.mapError(err)
	}
	return c.Invoke(ctx, name, Args{"access_token": accessToken})
}
