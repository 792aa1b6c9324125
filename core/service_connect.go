package core

import "context"

// DateRange bounds a transaction window. A blank bound falls back to the
// connect day offsets.
type DateRange struct {
	Start string
	End   string
}

func (r DateRange) apply(args Args) Args {
	args["start_date"] = r.Start
	args["end_date"] = r.End
	return args
}

// AddUserRequest registers a login with one of the legacy products. Window
// is only read by connect.
type AddUserRequest struct {
	Username string
	Password string
	PIN      string
	Type     string
	Webhook  string
	Window   DateRange
}

func (r AddUserRequest) args() Args {
	return Args{
		"username": r.Username,
		"password": r.Password,
		"pin":      r.PIN,
		"type":     r.Type,
		"webhook":  r.Webhook,
	}
}

func (c *Client) AddConnectUser(ctx context.Context, req AddUserRequest) (Result, error) {
	return c.Invoke(ctx, OpConnectAdd, req.Window.apply(req.args()))
}

func (c *Client) ConnectMFA(ctx context.Context, req MFARequest) (Result, error) {
	return c.Invoke(ctx, OpConnectMFA, req.args())
}

func (c *Client) UpdateConnectUser(ctx context.Context, req UpdateUserRequest) (Result, error) {
	return c.Invoke(ctx, OpConnectUpdate, req.args())
}

func (c *Client) GetConnectData(ctx context.Context, accessToken string, window DateRange) (Result, error) {
	return c.Invoke(ctx, OpConnectGet, window.apply(Args{"access_token": accessToken}))
}

func (c *Client) DeleteConnectUser(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpConnectDelete, Args{"access_token": accessToken})
}

// GetConnectAccounts returns the accounts array of accounts/get.
func (c *Client) GetConnectAccounts(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpConnectAccounts, Args{"access_token": accessToken})
}

// GetConnectTransactions returns the transactions array of transactions/get
// for the window.
func (c *Client) GetConnectTransactions(ctx context.Context, accessToken string, window DateRange) (Result, error) {
	return c.Invoke(ctx, OpConnectTransactions, window.apply(Args{"access_token": accessToken}))
}
