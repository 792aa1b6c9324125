package core

import "context"

// AddAuthUserRequest links an institution login through link/item/create.
type AddAuthUserRequest struct {
	Username        string
	Password        string
	PIN             string
	InstitutionID   string
	InitialProducts []string
	Webhook         string
}

func (r AddAuthUserRequest) args() Args {
	return Args{
		"username":         r.Username,
		"password":         r.Password,
		"pin":              r.PIN,
		"institution_id":   r.InstitutionID,
		"initial_products": r.InitialProducts,
		"webhook":          r.Webhook,
	}
}

// UpdateUserRequest replaces the stored login of an item.
type UpdateUserRequest struct {
	Username    string
	Password    string
	PIN         string
	AccessToken string
	Webhook     string
}

func (r UpdateUserRequest) args() Args {
	return Args{
		"username":     r.Username,
		"password":     r.Password,
		"pin":          r.PIN,
		"access_token": r.AccessToken,
		"webhook":      r.Webhook,
	}
}

// MFARequest answers a multi-factor challenge. MFA is a code, an answer or a
// list of answers; SendMethod selects the delivery device when requesting a
// code.
type MFARequest struct {
	MFA         any
	AccessToken string
	SendMethod  any
}

func (r MFARequest) args() Args {
	return Args{
		"mfa":          r.MFA,
		"access_token": r.AccessToken,
		"send_method":  r.SendMethod,
	}
}

func (c *Client) AddAuthUser(ctx context.Context, req AddAuthUserRequest) (Result, error) {
	return c.Invoke(ctx, OpAuthAdd, req.args())
}

func (c *Client) AuthMFA(ctx context.Context, req MFARequest) (Result, error) {
	return c.Invoke(ctx, OpAuthMFA, req.args())
}

func (c *Client) GetAuthData(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpAuthGet, Args{"access_token": accessToken})
}

func (c *Client) UpdateAuthUser(ctx context.Context, req UpdateUserRequest) (Result, error) {
	return c.Invoke(ctx, OpAuthUpdate, req.args())
}

func (c *Client) DeleteAuthUser(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpAuthDelete, Args{"access_token": accessToken})
}
