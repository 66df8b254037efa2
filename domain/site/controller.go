package site

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/domain/waitlist"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
)

const (
	ProductName          = "AImaker"
	messageLoadFailed    = "Failed to load waitlist data"
	homeTemplate         = "index.html"
	viewWaitlistTemplate = "view.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type PageOptions struct {
	AdminToken         string
	ExposeErrorDetails bool
}

type homePageData struct {
	Product    string
	SubmitPath string
}

type viewPageData struct {
	Product string
	Emails  []string
	Error   string
}

// NewSiteController serves the form page and the read-only listing page.
func NewSiteController(service waitlist.WaitlistService, opts PageOptions) *router.RESTController {
	return router.NewRESTController(
		"SiteController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.SetHTMLTemplate(pageTemplates)

			rs.AddPageHandler(c, nil, "", homePage())
			rs.AddPageHandler(c, nil, "view-waitlist", viewWaitlistPage(service, opts))
		},
	)
}

func homePage() router.PageFunction {
	return func(ctx *router.RequestContext) *router.PageResult {
		return &router.PageResult{
			Template: homeTemplate,
			Data: homePageData{
				Product:    ProductName,
				SubmitPath: "/api/join-waitlist",
			},
		}
	}
}

func viewWaitlistPage(service waitlist.WaitlistService, opts PageOptions) router.PageFunction {
	return func(ctx *router.RequestContext) *router.PageResult {
		if !waitlist.IsAuthorized(ctx, opts.AdminToken) {
			return &router.PageResult{
				StatusCode: http.StatusUnauthorized,
				Template:   viewWaitlistTemplate,
				Data:       viewPageData{Product: ProductName, Emails: []string{}, Error: waitlist.MessageUnauthorized},
			}
		}

		response, err := service.List(ctx.Request.Context())
		if err != nil {
			router.GetLogger(ctx).Error("Failed to render waitlist page", "error", err)

			message := messageLoadFailed
			if opts.ExposeErrorDetails {
				message = message + ": " + apperrors.GetErrorDetail(err)
			}

			return &router.PageResult{
				StatusCode: http.StatusInternalServerError,
				Template:   viewWaitlistTemplate,
				Data:       viewPageData{Product: ProductName, Emails: []string{}, Error: message},
			}
		}

		return &router.PageResult{
			Template: viewWaitlistTemplate,
			Data:     viewPageData{Product: ProductName, Emails: response.Emails},
		}
	}
}
