package core

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BuildRequest is what an operation sees when shaping its payload.
type BuildRequest struct {
	Args   Args
	Config Config
	Now    time.Time
}

// Operation declares one remote endpoint. Build returns the payload without
// credentials; a nil payload sends no body.
type Operation struct {
	Name        string
	Method      string
	Path        string
	Auth        AuthMode
	Required    []string
	Checks      []*validation.KeyRules
	ResponseKey string
	ReadOnly    bool
	PathFunc    func(args Args) string
	Build       func(req BuildRequest) (Envelope, error)
}

func (o Operation) resolvePath(args Args) string {
	if o.PathFunc != nil {
		return o.PathFunc(args)
	}
	return o.Path
}

const (
	OpAuthAdd    = "auth.add"
	OpAuthMFA    = "auth.mfa"
	OpAuthGet    = "auth.get"
	OpAuthUpdate = "auth.update"
	OpAuthDelete = "auth.delete"

	OpConnectAdd          = "connect.add"
	OpConnectMFA          = "connect.mfa"
	OpConnectUpdate       = "connect.update"
	OpConnectGet          = "connect.get"
	OpConnectDelete       = "connect.delete"
	OpConnectAccounts     = "connect.accounts"
	OpConnectTransactions = "connect.transactions"

	OpInfoAdd    = "info.add"
	OpInfoMFA    = "info.mfa"
	OpInfoUpdate = "info.update"
	OpInfoDelete = "info.delete"
	OpInfoGet    = "info.get"

	OpIncomeAdd    = "income.add"
	OpIncomeMFA    = "income.mfa"
	OpIncomeUpdate = "income.update"
	OpIncomeDelete = "income.delete"
	OpIncomeGet    = "income.get"

	OpRiskAdd    = "risk.add"
	OpRiskMFA    = "risk.mfa"
	OpRiskUpdate = "risk.update"
	OpRiskDelete = "risk.delete"
	OpRiskGet    = "risk.get"

	OpBalanceGet = "balance.get"

	OpInstitutionsLongtail  = "institutions.longtail"
	OpInstitutionsSearch    = "institutions.search"
	OpInstitutionsGetByID   = "institutions.get_by_id"
	OpInstitutionsByProduct = "institutions.by_product"

	OpCategoriesGet = "categories.get"

	OpLinkExchangeToken     = "link.exchange_token"
	OpLinkCreatePublicToken = "link.create_public_token"
	OpLinkGetItem           = "link.get_item"
)

// Catalog is an immutable name index over operations.
type Catalog struct {
	index map[string]Operation
	order []string
}

func NewCatalog(operations ...Operation) *Catalog {
	catalog := &Catalog{index: make(map[string]Operation, len(operations))}
	for _, op := range operations {
		name := strings.TrimSpace(op.Name)
		if name == "" {
			continue
		}
		op.Name = name
		if op.Method == "" {
			op.Method = http.MethodPost
		}
		if op.Auth == "" {
			op.Auth = AuthClientSecret
		}
		if _, exists := catalog.index[name]; !exists {
			catalog.order = append(catalog.order, name)
		}
		catalog.index[name] = op
	}
	return catalog
}

func (c *Catalog) Lookup(name string) (Operation, bool) {
	if c == nil {
		return Operation{}, false
	}
	op, ok := c.index[strings.TrimSpace(name)]
	return op, ok
}

// Operations lists the catalog in registration order.
func (c *Catalog) Operations() []Operation {
	if c == nil {
		return nil
	}
	out := make([]Operation, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.index[name])
	}
	return out
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the built-in operations.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = NewCatalog(BuiltinOperations()...)
	})
	return defaultCatalog
}

func BuiltinOperations() []Operation {
	ops := []Operation{
		{
			Name:     OpAuthAdd,
			Path:     "link/item/create",
			Auth:     AuthPublicKey,
			Required: []string{"username", "password", "institution_id", "initial_products"},
			Build:    buildAddAuthUser,
		},
		{
			Name:     OpAuthMFA,
			Path:     "auth/step",
			Required: []string{"mfa", "access_token"},
			Build: func(req BuildRequest) (Envelope, error) {
				return mfaPayload(req.Args, Envelope{
					"login_only": boolOption(req.Args, "login_only", req.Config.Auth.LoginOnly),
				}), nil
			},
		},
		accessTokenOperation(OpAuthGet, http.MethodPost, "auth/get", "", true),
		{
			Name:     OpAuthUpdate,
			Method:   http.MethodPatch,
			Path:     "auth",
			Required: []string{"username", "password", "access_token"},
			Build: func(req BuildRequest) (Envelope, error) {
				return updatePayload(req.Args, false), nil
			},
		},
		accessTokenOperation(OpAuthDelete, http.MethodDelete, "auth", "", false),

		{
			Name:     OpConnectAdd,
			Path:     "connect",
			Required: []string{"username", "password", "type", "webhook"},
			Build:    buildAddConnectUser,
		},
		mfaOperation(OpConnectMFA, "connect/step"),
		updateOperation(OpConnectUpdate, "connect"),
		{
			Name:     OpConnectGet,
			Path:     "connect/get",
			Required: []string{"access_token"},
			ReadOnly: true,
			Build:    buildGetConnectData,
		},
		accessTokenOperation(OpConnectDelete, http.MethodDelete, "connect", "", false),
		accessTokenOperation(OpConnectAccounts, http.MethodPost, "accounts/get", "accounts", true),
		{
			Name:        OpConnectTransactions,
			Path:        "transactions/get",
			Required:    []string{"access_token"},
			Checks:      []*validation.KeyRules{validation.Key("count", intAtLeast(1)).Optional(), validation.Key("offset", intAtLeast(0)).Optional()},
			ResponseKey: "transactions",
			ReadOnly:    true,
			Build:       buildGetTransactions,
		},

		addProductOperation(OpInfoAdd, "info", func(cfg Config) bool { return cfg.Connect.List }),
		mfaOperation(OpInfoMFA, "info/step"),
		updateOperation(OpInfoUpdate, "info"),
		accessTokenOperation(OpInfoDelete, http.MethodDelete, "info", "", false),
		accessTokenOperation(OpInfoGet, http.MethodPost, "identity/get", "", true),

		addProductOperation(OpIncomeAdd, "income", func(cfg Config) bool { return cfg.Income.List }),
		mfaOperation(OpIncomeMFA, "income/step"),
		updateOperation(OpIncomeUpdate, "income"),
		accessTokenOperation(OpIncomeDelete, http.MethodDelete, "income", "", false),
		accessTokenOperation(OpIncomeGet, http.MethodPost, "income/get", "", true),

		addProductOperation(OpRiskAdd, "risk", func(cfg Config) bool { return cfg.Risk.List }),
		mfaOperation(OpRiskMFA, "risk/step"),
		updateOperation(OpRiskUpdate, "risk"),
		accessTokenOperation(OpRiskDelete, http.MethodDelete, "risk", "", false),
		accessTokenOperation(OpRiskGet, http.MethodPost, "risk/get", "", true),

		{
			Name:     OpBalanceGet,
			Path:     "accounts/balance/get",
			Required: []string{"access_token"},
			ReadOnly: true,
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{
					"access_token": req.Args.Raw("access_token"),
					"options": Envelope{
						"account_ids": optionalStrings(req.Args.Strings("account_ids")),
					},
				}, nil
			},
		},

		{
			Name:        OpInstitutionsLongtail,
			Path:        "institutions/get",
			Checks:      []*validation.KeyRules{validation.Key("count", intAtLeast(1)).Optional(), validation.Key("offset", intAtLeast(0)).Optional()},
			ResponseKey: "institutions",
			ReadOnly:    true,
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{
					"count":  intOption(req.Args, "count", req.Config.Institutions.LongtailCount),
					"offset": intOption(req.Args, "offset", req.Config.Institutions.LongtailOffset),
				}, nil
			},
		},
		{
			Name:        OpInstitutionsSearch,
			Path:        "institutions/search",
			Auth:        AuthPublicKey,
			Required:    []string{"query"},
			ResponseKey: "institutions",
			ReadOnly:    true,
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{
					"query":    req.Args.String("query"),
					"products": optionalStrings(req.Args.Strings("products")),
					"options": Envelope{
						"include_display_data": boolOption(req.Args, "include_display_data", req.Config.Institutions.IncludeDisplayData),
					},
				}, nil
			},
		},
		{
			Name:        OpInstitutionsGetByID,
			Path:        "institutions/get_by_id",
			Auth:        AuthPublicKey,
			Required:    []string{"institution_id"},
			ResponseKey: "institution",
			ReadOnly:    true,
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{
					"institution_id": req.Args.String("institution_id"),
					"options": Envelope{
						"include_display_data": boolOption(req.Args, "include_display_data", req.Config.Institutions.IncludeDisplayData),
					},
				}, nil
			},
		},
		{
			Name:     OpInstitutionsByProduct,
			Path:     "institutions/all",
			Required: []string{"products"},
			Checks:   []*validation.KeyRules{validation.Key("count", intAtLeast(1)).Optional()},
			ReadOnly: true,
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{
					"products": req.Args.Strings("products"),
					"count":    intOption(req.Args, "count", req.Config.Institutions.ProductCount),
				}, nil
			},
		},

		{
			Name:     OpCategoriesGet,
			Method:   http.MethodGet,
			Path:     "categories/get",
			Auth:     AuthNone,
			ReadOnly: true,
			PathFunc: categoriesPath,
			Build: func(BuildRequest) (Envelope, error) {
				return nil, nil
			},
		},

		{
			Name:     OpLinkExchangeToken,
			Path:     "item/public_token/exchange",
			Required: []string{"public_token"},
			Build: func(req BuildRequest) (Envelope, error) {
				return Envelope{"public_token": req.Args.Raw("public_token")}, nil
			},
		},
		accessTokenOperation(OpLinkCreatePublicToken, http.MethodPost, "item/public_token/create", "", false),
		accessTokenOperation(OpLinkGetItem, http.MethodPost, "item/get", "", true),
	}
	return ops
}

func categoriesPath(args Args) string {
	id := args.String("category_id")
	if id == "" {
		return "categories/get"
	}
	return "categories/get/" + url.PathEscape(id)
}

func accessTokenOperation(name string, method string, path string, responseKey string, readOnly bool) Operation {
	return Operation{
		Name:        name,
		Method:      method,
		Path:        path,
		Required:    []string{"access_token"},
		ResponseKey: responseKey,
		ReadOnly:    readOnly,
		Build: func(req BuildRequest) (Envelope, error) {
			return Envelope{"access_token": req.Args.Raw("access_token")}, nil
		},
	}
}

func mfaOperation(name string, path string) Operation {
	return Operation{
		Name:     name,
		Path:     path,
		Required: []string{"mfa", "access_token"},
		Build: func(req BuildRequest) (Envelope, error) {
			return mfaPayload(req.Args, nil), nil
		},
	}
}

func updateOperation(name string, path string) Operation {
	return Operation{
		Name:     name,
		Method:   http.MethodPatch,
		Path:     path,
		Required: []string{"username", "password", "access_token"},
		Build: func(req BuildRequest) (Envelope, error) {
			return updatePayload(req.Args, true), nil
		},
	}
}

func addProductOperation(name string, path string, list func(Config) bool) Operation {
	return Operation{
		Name:     name,
		Path:     path,
		Required: []string{"username", "password", "type", "webhook"},
		Build: func(req BuildRequest) (Envelope, error) {
			payload := userPayload(req.Args)
			payload["type"] = req.Args.String("type")
			payload["options"] = Envelope{
				"list":    boolOption(req.Args, "list", list(req.Config)),
				"webhook": optionalString(req.Args.String("webhook")),
			}
			return payload, nil
		},
	}
}

func buildAddAuthUser(req BuildRequest) (Envelope, error) {
	webhook := req.Args.String("webhook")
	if webhook == "" {
		webhook = req.Config.Link.Webhook
	}
	return Envelope{
		"credentials": Envelope{
			"username": req.Args.Raw("username"),
			"password": req.Args.Raw("password"),
		},
		"institution_id":   req.Args.String("institution_id"),
		"initial_products": req.Args.Strings("initial_products"),
		"pin":              optionalString(req.Args.Raw("pin")),
		"options": Envelope{
			"webhook": optionalString(webhook),
		},
	}, nil
}

func buildAddConnectUser(req BuildRequest) (Envelope, error) {
	start, end, err := connectWindow(req.Args, req.Config, req.Now)
	if err != nil {
		return nil, err
	}
	payload := userPayload(req.Args)
	payload["type"] = req.Args.String("type")
	payload["options"] = Envelope{
		"login_only": boolOption(req.Args, "login_only", req.Config.Connect.LoginOnly),
		"webhook":    optionalString(req.Args.String("webhook")),
		"pending":    boolOption(req.Args, "pending", req.Config.Connect.Pending),
		"list":       boolOption(req.Args, "list", req.Config.Connect.List),
		"gte":        start,
		"lte":        end,
	}
	return payload, nil
}

func buildGetConnectData(req BuildRequest) (Envelope, error) {
	start, end, err := connectWindow(req.Args, req.Config, req.Now)
	if err != nil {
		return nil, err
	}
	return Envelope{
		"access_token": req.Args.Raw("access_token"),
		"options": Envelope{
			"pending": boolOption(req.Args, "pending", req.Config.Connect.Pending),
			"gte":     start,
			"lte":     end,
		},
	}, nil
}

func buildGetTransactions(req BuildRequest) (Envelope, error) {
	start, end, err := connectWindow(req.Args, req.Config, req.Now)
	if err != nil {
		return nil, err
	}
	return Envelope{
		"access_token": req.Args.Raw("access_token"),
		"start_date":   start,
		"end_date":     end,
		"options": Envelope{
			"count":  intOption(req.Args, "count", req.Config.Connect.TransactionCount),
			"offset": intOption(req.Args, "offset", 0),
		},
	}, nil
}

// userPayload carries the username/password/pin triple used by the legacy
// product endpoints. pin is only present when supplied.
func userPayload(args Args) Envelope {
	return Envelope{
		"username": args.Raw("username"),
		"password": args.Raw("password"),
		"pin":      optionalString(args.Raw("pin")),
	}
}

func updatePayload(args Args, withOptions bool) Envelope {
	payload := userPayload(args)
	payload["access_token"] = args.Raw("access_token")
	if withOptions {
		payload["options"] = Envelope{
			"webhook": optionalString(args.String("webhook")),
		}
	}
	return payload
}

func mfaPayload(args Args, extraOptions Envelope) Envelope {
	options := Envelope{
		"send_method": optionalValue(args["send_method"]),
	}
	for key, value := range extraOptions {
		options[key] = value
	}
	return Envelope{
		"mfa":          args["mfa"],
		"access_token": args.Raw("access_token"),
		"options":      options,
	}
}

func optionalValue(value any) any {
	if text, ok := value.(string); ok {
		return optionalString(text)
	}
	return value
}

func boolOption(args Args, key string, fallback bool) bool {
	if value, ok := args.Bool(key); ok {
		return value
	}
	return fallback
}

func intOption(args Args, key string, fallback int) int {
	if value, ok := args.Int(key); ok {
		return value
	}
	return fallback
}
