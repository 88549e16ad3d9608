// Package autoload configures the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "supportmesh/pkg/config"
	logx "supportmesh/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
