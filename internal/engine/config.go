package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
)

// Family tags one of the closed set of strategy variants. Every family runs
// on the same session engine and differs only in its entry predicate and its
// enabled exit rules.
type Family string

const (
	FamilyBreakout          Family = "breakout"
	FamilyReverseBreakout   Family = "reverse_breakout"
	FamilyMeanReversion     Family = "mean_reversion"
	FamilySupportResistance Family = "support_resistance"
)

// AllFamilies lists every strategy family in a stable order.
func AllFamilies() []Family {
	return []Family{FamilyBreakout, FamilyReverseBreakout, FamilyMeanReversion, FamilySupportResistance}
}

// UsesOpeningRange reports whether the family derives its entry levels from
// the session's opening range.
func (f Family) UsesOpeningRange() bool {
	return f == FamilyBreakout || f == FamilyReverseBreakout
}

// StrategyConfig is an immutable parameter bundle. One config fully
// determines engine behavior for one session.
type StrategyConfig struct {
	Family Family `yaml:"family" json:"family" validate:"required,oneof=breakout reverse_breakout mean_reversion support_resistance" jsonschema:"title=Strategy Family,description=One of the closed set of strategy variants"`
	// OpenRangeMinutes is the opening/reference range length. Only breakout
	// families consume it; it may be zero for the single-pass families.
	OpenRangeMinutes int  `yaml:"open_range_minutes" json:"open_range_minutes" validate:"gte=0" jsonschema:"title=Opening Range Minutes,minimum=0"`
	UseVolumeFilter  bool `yaml:"use_volume_filter" json:"use_volume_filter" jsonschema:"title=Volume Filter"`
	UseVWAPFilter    bool `yaml:"use_vwap_filter" json:"use_vwap_filter" jsonschema:"title=VWAP Filter"`
	// StopLossPct is the optional percentage stop from the entry price
	// (0.005 = 0.5%).
	StopLossPct optional.Option[float64] `yaml:"stop_loss_pct" json:"stop_loss_pct" jsonschema:"title=Stop Loss Percent"`
	// ATRStopMultiplier is the optional ATR-multiple stop. The ATR value is
	// captured at entry time and never recomputed for the open trade.
	ATRStopMultiplier optional.Option[float64] `yaml:"atr_stop_multiplier" json:"atr_stop_multiplier" jsonschema:"title=ATR Stop Multiplier"`
	// TimeExitMinutes closes the trade at the close of the first bar at which
	// the elapsed time since entry reaches the configured minutes.
	TimeExitMinutes optional.Option[int] `yaml:"time_exit_minutes" json:"time_exit_minutes" jsonschema:"title=Time Exit Minutes"`
	// LimitSameDirection disables the direction of the immediately preceding
	// losing trade for the next entry attempt. Only the last trade's outcome
	// is inspected, never a longer losing streak.
	LimitSameDirection bool `yaml:"limit_same_direction" json:"limit_same_direction" jsonschema:"title=Limit Same Direction After Loss"`
	MaxEntries         int  `yaml:"max_entries" json:"max_entries" validate:"gte=1" jsonschema:"title=Max Entries Per Session,minimum=1"`
}

var configValidator = validator.New()

// Validate checks the config's structural constraints plus the cross-field
// requirement that breakout families carry a positive opening range.
func (c StrategyConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.Family.UsesOpeningRange() && c.OpenRangeMinutes <= 0 {
		return fmt.Errorf("family %s requires a positive open_range_minutes", c.Family)
	}

	return nil
}

// UnmarshalYAML implements custom unmarshaling so optional parameters absent
// from the document become None rather than zero values.
func (c *StrategyConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type config struct {
		Family             Family   `yaml:"family"`
		OpenRangeMinutes   int      `yaml:"open_range_minutes"`
		UseVolumeFilter    bool     `yaml:"use_volume_filter"`
		UseVWAPFilter      bool     `yaml:"use_vwap_filter"`
		StopLossPct        *float64 `yaml:"stop_loss_pct"`
		ATRStopMultiplier  *float64 `yaml:"atr_stop_multiplier"`
		TimeExitMinutes    *int     `yaml:"time_exit_minutes"`
		LimitSameDirection bool     `yaml:"limit_same_direction"`
		MaxEntries         int      `yaml:"max_entries"`
	}

	var raw config
	if err := unmarshal(&raw); err != nil {
		return err
	}

	c.Family = raw.Family
	c.OpenRangeMinutes = raw.OpenRangeMinutes
	c.UseVolumeFilter = raw.UseVolumeFilter
	c.UseVWAPFilter = raw.UseVWAPFilter
	c.LimitSameDirection = raw.LimitSameDirection
	c.MaxEntries = raw.MaxEntries

	c.StopLossPct = optional.None[float64]()
	if raw.StopLossPct != nil {
		c.StopLossPct = optional.Some(*raw.StopLossPct)
	}

	c.ATRStopMultiplier = optional.None[float64]()
	if raw.ATRStopMultiplier != nil {
		c.ATRStopMultiplier = optional.Some(*raw.ATRStopMultiplier)
	}

	c.TimeExitMinutes = optional.None[int]()
	if raw.TimeExitMinutes != nil {
		c.TimeExitMinutes = optional.Some(*raw.TimeExitMinutes)
	}

	return nil
}

// Label builds the human-readable tag string used when scenarios are
// presented, e.g. "OR=30m + TimeExit=60m + MaxEntries=1 + VWAPFilter".
func (c StrategyConfig) Label() string {
	tags := []string{fmt.Sprintf("OR=%dm", c.OpenRangeMinutes)}

	if minutes, err := c.TimeExitMinutes.Take(); err == nil {
		tags = append(tags, fmt.Sprintf("TimeExit=%dm", minutes))
	} else {
		tags = append(tags, "HoldToClose")
	}

	tags = append(tags, "MaxEntries="+strconv.Itoa(c.MaxEntries))

	if c.UseVolumeFilter {
		tags = append(tags, "VolFilter")
	}

	if c.UseVWAPFilter {
		tags = append(tags, "VWAPFilter")
	}

	if pct, err := c.StopLossPct.Take(); err == nil {
		tags = append(tags, fmt.Sprintf("SL=%.3f%%", pct*100))
	}

	if mult, err := c.ATRStopMultiplier.Take(); err == nil {
		tags = append(tags, fmt.Sprintf("ATRStop=%.1fx", mult))
	}

	if c.LimitSameDirection {
		tags = append(tags, "OppositeAfterLoss")
	}

	return strings.Join(tags, " + ")
}

// GenerateSchema generates a JSON schema for the StrategyConfig.
func (c *StrategyConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t.String() {
			case "optional.Option[float64]":
				return &jsonschema.Schema{Type: "number"}
			case "optional.Option[int]":
				return &jsonschema.Schema{Type: "integer"}
			case "engine.Family":
				var enum []any
				for _, f := range AllFamilies() {
					enum = append(enum, string(f))
				}

				return &jsonschema.Schema{Type: "string", Enum: enum}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "strategy-config"
	schema.Description = "Configuration schema for one session trade engine run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the StrategyConfig.
func (c *StrategyConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
