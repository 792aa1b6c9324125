package core

import "context"

type SearchRequest struct {
	Query    string
	Products []string
}

// LongtailRequest pages through institutions/get. A nil field takes the
// configured value; an explicit zero offset is sent as is.
type LongtailRequest struct {
	Count  *int
	Offset *int
}

func (r LongtailRequest) args() Args {
	args := Args{}
	if r.Count != nil {
		args["count"] = *r.Count
	}
	if r.Offset != nil {
		args["offset"] = *r.Offset
	}
	return args
}

func (c *Client) Longtail(ctx context.Context, req LongtailRequest) (Result, error) {
	return c.Invoke(ctx, OpInstitutionsLongtail, req.args())
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (Result, error) {
	return c.Invoke(ctx, OpInstitutionsSearch, Args{
		"query":    req.Query,
		"products": req.Products,
	})
}

func (c *Client) GetInstitutionByID(ctx context.Context, institutionID string) (Result, error) {
	return c.Invoke(ctx, OpInstitutionsGetByID, Args{"institution_id": institutionID})
}

func (c *Client) SearchByProduct(ctx context.Context, product string) (Result, error) {
	args := Args{}
	if product != "" {
		args["products"] = []string{product}
	}
	return c.Invoke(ctx, OpInstitutionsByProduct, args)
}

// Categories lists every category, or one when categoryID is set.
func (c *Client) Categories(ctx context.Context, categoryID string) (Result, error) {
	return c.Invoke(ctx, OpCategoriesGet, Args{"category_id": categoryID})
}
