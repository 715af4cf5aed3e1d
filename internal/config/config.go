package config

// Config represents the complete server configuration
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Engine EngineConfig `yaml:"engine"`
}

// DataConfig locates the static reference dataset
type DataConfig struct {
	// Dir containing highways.json, rnr.json and stations.json; empty
	// means the embedded sample dataset
	Dir string `yaml:"dir"`
}

// EngineConfig holds the tunables of the matching and ranking engine
type EngineConfig struct {
	// GridCellSizeDeg is the spatial grid cell size in degrees
	GridCellSizeDeg float64 `yaml:"grid_cell_size_deg"`

	// Corridor buffer defaults and the range accepted from clients, meters
	BufferMeters    float64 `yaml:"buffer_meters"`
	BufferMinMeters float64 `yaml:"buffer_min_meters"`
	BufferMaxMeters float64 `yaml:"buffer_max_meters"`

	// TripSpeedKmh is the cruising speed assumed for trip planning advice
	TripSpeedKmh float64 `yaml:"trip_speed_kmh"`

	// Result sizes: NearestPool candidates are distance-ranked before the
	// secondary sort trims to NearestLimit; NextAheadLimit applies per kind
	NearestLimit   int `yaml:"nearest_limit"`
	NearestPool    int `yaml:"nearest_pool"`
	NextAheadLimit int `yaml:"next_ahead_limit"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			GridCellSizeDeg: 0.25,
			BufferMeters:    400,
			BufferMinMeters: 200,
			BufferMaxMeters: 800,
			TripSpeedKmh:    90,
			NearestLimit:    10,
			NearestPool:     30,
			NextAheadLimit:  3,
		},
	}
}

// Normalize fills zero-valued engine settings from the defaults so a
// partially specified config section stays usable
func (c *Config) Normalize() {
	def := DefaultConfig().Engine
	e := &c.Engine
	if e.GridCellSizeDeg <= 0 {
		e.GridCellSizeDeg = def.GridCellSizeDeg
	}
	if e.BufferMeters <= 0 {
		e.BufferMeters = def.BufferMeters
	}
	if e.BufferMinMeters <= 0 {
		e.BufferMinMeters = def.BufferMinMeters
	}
	if e.BufferMaxMeters <= 0 {
		e.BufferMaxMeters = def.BufferMaxMeters
	}
	if e.TripSpeedKmh <= 0 {
		e.TripSpeedKmh = def.TripSpeedKmh
	}
	if e.NearestLimit <= 0 {
		e.NearestLimit = def.NearestLimit
	}
	if e.NearestPool <= 0 {
		e.NearestPool = def.NearestPool
	}
	if e.NextAheadLimit <= 0 {
		e.NextAheadLimit = def.NextAheadLimit
	}
}
