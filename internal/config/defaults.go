package config

const (
	defaultLogDir            = "~/.local/share/dicomscrub/logs"
	defaultAuditDB           = "~/.local/share/dicomscrub/identity.db"
	defaultQuarantineDirName = "quarantine"
	defaultDelimiter         = ","
	defaultGranularity       = "month"
	defaultEngineBinary      = "dicom-anon"
	defaultEngineProfile     = "basic"
	defaultEngineTimeout     = 120
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Granularity values accepted by sheet.granularity.
const (
	GranularityMonth = "month"
	GranularityYear  = "year"
	GranularityNone  = "none"
)

func defaultModalities() []string {
	return []string{"MG", "OT"}
}

// defaultExpectedHeader declares the column names the schema check accepts
// for the positionally significant fields. Column numbering follows the
// registry export: 1=person ID, 2=invitation ID, 3=screening date,
// 10=diagnosis date.
func defaultExpectedHeader() []string {
	return []string{"pID", "invID", "O2_Bildetakingsdato", "", "", "", "", "", "", "Diagnosedato"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:            defaultLogDir,
			AuditDB:           defaultAuditDB,
			QuarantineDirName: defaultQuarantineDirName,
		},
		Sheet: Sheet{
			Delimiter:      defaultDelimiter,
			HasHeader:      true,
			Granularity:    defaultGranularity,
			ExpectedHeader: defaultExpectedHeader(),
		},
		Engine: Engine{
			Binary:         defaultEngineBinary,
			Profile:        defaultEngineProfile,
			TimeoutSeconds: defaultEngineTimeout,
		},
		Modalities: defaultModalities(),
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
