// Package autoload initializes the global logger from LOG_* environment
// variables when blank-imported from main.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/logger"
)

func init() {
	var conf logx.Config
	// Missing or malformed env vars fall back to defaults.
	_ = envconfig.Process("LOG", &conf)
	logx.Init(conf)
}
