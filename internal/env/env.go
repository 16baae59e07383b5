package env

import "github.com/homehab/hrv-controller/internal/config"

var Cfg *config.Config
