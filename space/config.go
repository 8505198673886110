package space

// Config is the serializable description of a Space.
type Config struct {
	Bits       []int     `json:"bits"`
	Interleave []int     `json:"interleave"`
	Lo         []float64 `json:"lo,omitempty"`
	Hi         []float64 `json:"hi,omitempty"`
}

// Config returns the description New needs to rebuild s.
func (s *Space) Config() Config {
	cfg := Config{
		Bits:       make([]int, s.dims),
		Interleave: s.Interleave(),
		Lo:         make([]float64, s.dims),
		Hi:         make([]float64, s.dims),
	}
	for d := 0; d < s.dims; d++ {
		cfg.Bits[d] = s.bits[d]
		cfg.Lo[d] = s.lo[d]
		cfg.Hi[d] = s.hi[d]
	}
	return cfg
}

// FromConfig rebuilds a Space from its Config.
func FromConfig(cfg Config) (*Space, error) {
	return New(cfg.Bits, func(o *Options) {
		o.Interleave = cfg.Interleave
		o.Lo = cfg.Lo
		o.Hi = cfg.Hi
	})
}
