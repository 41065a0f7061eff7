package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ispoms/oms-console/internal/api/middleware"
	"github.com/ispoms/oms-console/internal/core/domain"
)

const homePath = "/dashboard"

// ConsoleHandler renders view descriptors for the console pages.
type ConsoleHandler struct{}

func NewConsoleHandler() *ConsoleHandler {
	return &ConsoleHandler{}
}

// Page returns the handler for v. Access is enforced by middleware.Guard.
func (h *ConsoleHandler) Page(v View) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := middleware.UserFrom(c)
		return c.JSON(http.StatusOK, viewResponse{
			View:       v.Name,
			Title:      v.Title,
			User:       user,
			Navigation: navigationFor(user),
		})
	}
}

// Navigation lists the sidebar entries the signed-in user may open.
//
// @Summary      Sidebar entries
// @Tags         console
// @Produce      json
// @Success      200  {array}  navItem
// @Router       /api/navigation [get]
func (h *ConsoleHandler) Navigation(c echo.Context) error {
	return c.JSON(http.StatusOK, navigationFor(middleware.UserFrom(c)))
}

// Login describes the sign-in page. A signed-in console is sent on to
// where it came from.
//
// @Summary      Sign-in page
// @Tags         console
// @Produce      json
// @Param        from  query     string  false  "page to return to"
// @Success      200   {object}  loginPageResponse
// @Success      302
// @Router       /login [get]
func (h *ConsoleHandler) Login(c echo.Context) error {
	store, err := middleware.Store(c)
	if err != nil {
		return err
	}
	from := safeReturnPath(c.QueryParam("from"))
	sess := store.Snapshot()

	if sess.IsAuthenticated {
		target := from
		if target == "" {
			target = homePath
		}
		if !middleware.WantsJSON(c.Request()) {
			return c.Redirect(http.StatusFound, target)
		}
		return c.JSON(http.StatusOK, loginPageResponse{View: "login", Authenticated: true, Redirect: target})
	}

	return c.JSON(http.StatusOK, loginPageResponse{View: "login", From: from, Error: sess.Error})
}

// Unauthorized describes the access-denied page.
//
// @Summary      Access denied page
// @Tags         console
// @Produce      json
// @Param        from  query     string  false  "page that was refused"
// @Success      403   {object}  unauthorizedResponse
// @Router       /unauthorized [get]
func (h *ConsoleHandler) Unauthorized(c echo.Context) error {
	links := map[string]string{"home": homePath}
	if from := safeReturnPath(c.QueryParam("from")); from != "" {
		links["back"] = from
	}
	return c.JSON(http.StatusForbidden, unauthorizedResponse{
		View:    "unauthorized",
		Title:   "Access Denied",
		Message: "You don't have permission to access this page.",
		Links:   links,
	})
}

func navigationFor(user *domain.User) []navItem {
	items := []navItem{}
	if user == nil {
		return items
	}
	sess := domain.Session{IsAuthenticated: true, User: user}
	for _, v := range Views {
		if v.InNavigation && domain.Decide(sess, v.Permissions) == domain.Render {
			items = append(items, navItem{Title: v.Title, Href: v.Path})
		}
	}
	return items
}

// safeReturnPath keeps only same-origin absolute paths.
func safeReturnPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	return p
}
