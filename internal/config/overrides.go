package config

// Overrides are command-line values applied on top of the file config.
// Zero values leave the config untouched.
type Overrides struct {
	Debug         bool
	OutputDir     string
	Name          string
	Granularity   string
	Sources       []string
	MaxResolution int
	Workers       int
	LogFile       string
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.OutputDir != "" {
		cfg.Output.Dir = o.OutputDir
	}
	if o.Name != "" {
		cfg.Output.Name = o.Name
	}
	if o.Granularity != "" {
		cfg.Convert.Granularity = o.Granularity
	}
	if len(o.Sources) > 0 {
		cfg.Textures.Sources = append(cfg.Textures.Sources, o.Sources...)
	}
	if o.MaxResolution > 0 {
		cfg.Textures.MaxResolution = o.MaxResolution
	}
	if o.Workers > 0 {
		cfg.Textures.Workers = o.Workers
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
}
