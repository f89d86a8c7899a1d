package constants

type ContextKey string

const (
	AppKey          ContextKey = "app"
	LoggerKey       ContextKey = "logger"
	RequestStart    ContextKey = "requestStart"
	ParamsKey       ContextKey = "params"
	PageContext     ContextKey = "pageContext"
	NavItemsKey     ContextKey = "navItems"
	AllNavItemsKey  ContextKey = "allNavItems"
	FavoritesKey    ContextKey = "favorites"
	SessionKey      ContextKey = "viewSession"
	HeadKey         ContextKey = "head"
	SidebarPropsKey ContextKey = "sidebarProps"
)
