package integrate

// SemverVersion is embedded at the front of the Meta blob so the
// in-game loader can refuse to parse a record from a newer tool.
type SemverVersion struct {
	Major uint32 `msgpack:"major"`
	Minor uint32 `msgpack:"minor"`
	Patch uint32 `msgpack:"patch"`
}

// ApprovalStatus mirrors a mod.io moderation decision.
type ApprovalStatus int

const (
	ApprovalSandbox ApprovalStatus = iota
	ApprovalApproved
	ApprovalVerified
)

// MetaConfig carries boolean runtime flags for the in-game mod loader.
// Fields are opaque to the integration engine; it only serializes them.
type MetaConfig struct {
	DisableExplodingGasFix bool `msgpack:"disable_exploding_gas_fix"`
}

// MetaMod is one mod's entry in the embedded Meta record.
type MetaMod struct {
	Name     string         `msgpack:"name"`
	Version  string         `msgpack:"version"`
	Author   string         `msgpack:"author"`
	Required bool           `msgpack:"required"`
	URL      string         `msgpack:"url"`
	Approval ApprovalStatus `msgpack:"approval"`
}

// Meta is the versioned record embedded at path "meta" in the output
// pak, read by the in-game loader at startup.
type Meta struct {
	Version SemverVersion `msgpack:"version"`
	Config  MetaConfig    `msgpack:"config"`
	Mods    []MetaMod     `msgpack:"mods"`
}

// ModioTags carries provider-supplied metadata for mods resolved
// through mod.io.
type ModioTags struct {
	ApprovalStatus ApprovalStatus
	ModioID        uint32
}

// ModInfo is the caller-supplied description of one mod to integrate.
// The core treats it as an opaque, immutable record.
type ModInfo struct {
	Name              string
	Resolution        string
	SuggestedRequire  bool
	ModioTags         *ModioTags
}

func (m ModInfo) resolvableURL() string {
	return m.Resolution
}

func (m ModInfo) approval() ApprovalStatus {
	if m.ModioTags != nil {
		return m.ModioTags.ApprovalStatus
	}
	return ApprovalSandbox
}
