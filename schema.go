package confguard

// Section names.
const (
	SectionGeneral  = "General"
	SectionWatchdog = "Watchdog"
)

// Field is a schema key and the rule for its value.
type Field struct {
	Key  string
	Rule Rule
}

// SectionSchema lists the fields of one section in check order.
type SectionSchema struct {
	Name   string
	Fields []Field
}

// Schema lists sections in check order.
type Schema []SectionSchema

// Section returns the schema for name.
func (s Schema) Section(name string) (SectionSchema, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec, true
		}
	}
	return SectionSchema{}, false
}

// DefaultSchema is the daemon configuration schema.
var DefaultSchema = Schema{
	{
		Name: SectionGeneral,
		Fields: []Field{
			{Key: "ScanMemoryLimit", Rule: IntRange(1024, 8192)},
			{Key: "PackageType", Rule: OneOf("rpm", "deb")},
			{Key: "ExecArgMax", Rule: IntRange(10, 100)},
			{Key: "AdditionalDNSLookup", Rule: Bool()},
			{Key: "CoreDumps", Rule: Bool()},
			{Key: "RevealSensitiveInfoInTraces", Rule: Bool()},
			{Key: "ExecEnvMax", Rule: IntRange(10, 100)},
			{Key: "MaxInotifyWatches", Rule: IntRange(1000, 1000000)},
			{Key: "CoreDumpsPath", Rule: ExistingAbsPath()},
			{Key: "UseFanotify", Rule: Bool()},
			{Key: "KsvlaMode", Rule: Bool()},
			{Key: "MachineId", Rule: UUID()},
			{Key: "StartupTraces", Rule: Bool()},
			{Key: "MaxInotifyInstances", Rule: IntRange(1024, 8192)},
			{Key: "Locale", Rule: Locale()},
		},
	},
	{
		Name: SectionWatchdog,
		Fields: []Field{
			{Key: "ConnectTimeout", Rule: Minutes(1, 120)},
			{Key: "MaxVirtualMemory", Rule: PercentOrKeyword("off", "auto")},
			{Key: "MaxMemory", Rule: PercentOrKeyword("off", "auto")},
			{Key: "PingInterval", Rule: IntRange(100, 10000)},
		},
	},
}
