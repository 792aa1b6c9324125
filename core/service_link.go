package core

import "context"

// ExchangeToken trades a Link public token for an access token.
func (c *Client) ExchangeToken(ctx context.Context, publicToken string) (Result, error) {
	return c.Invoke(ctx, OpLinkExchangeToken, Args{"public_token": publicToken})
}

func (c *Client) CreatePublicToken(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpLinkCreatePublicToken, Args{"access_token": accessToken})
}

func (c *Client) GetItem(ctx context.Context, accessToken string) (Result, error) {
	return c.Invoke(ctx, OpLinkGetItem, Args{"access_token": accessToken})
}
