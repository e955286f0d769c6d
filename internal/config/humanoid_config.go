// File: internal/config/humanoid_config.go
// Defaults for the humanoid pacing model. The struct itself lives in the
// humanoid package; these keys let a YAML file or env tune the typist.
package config

import (
	"github.com/spf13/viper"

	"github.com/xkilldash9x/clawlogin/internal/browser/humanoid"
)

func setHumanoidDefaults(v *viper.Viper) {
	d := humanoid.DefaultConfig()
	v.SetDefault("browser.humanoid.enabled", d.Enabled)
	v.SetDefault("browser.humanoid.seed", 0)
	v.SetDefault("browser.humanoid.key_delay_min_ms", d.KeyDelayMinMs)
	v.SetDefault("browser.humanoid.key_delay_max_ms", d.KeyDelayMaxMs)
	v.SetDefault("browser.humanoid.focus_pause_min_ms", d.FocusPauseMinMs)
	v.SetDefault("browser.humanoid.focus_pause_max_ms", d.FocusPauseMaxMs)
	v.SetDefault("browser.humanoid.settle_pause_min_ms", d.SettlePauseMinMs)
	v.SetDefault("browser.humanoid.settle_pause_max_ms", d.SettlePauseMaxMs)
}
