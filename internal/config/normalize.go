package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSheet()
	c.normalizeEngine()
	c.normalizeModalities()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AuditDB) == "" {
		c.Paths.AuditDB = defaultAuditDB
	}
	if c.Paths.AuditDB, err = expandPath(c.Paths.AuditDB); err != nil {
		return fmt.Errorf("paths.audit_db: %w", err)
	}
	c.Paths.QuarantineDirName = strings.TrimSpace(c.Paths.QuarantineDirName)
	if c.Paths.QuarantineDirName == "" {
		c.Paths.QuarantineDirName = defaultQuarantineDirName
	}
	return nil
}

func (c *Config) normalizeSheet() {
	if c.Sheet.Delimiter == "" {
		c.Sheet.Delimiter = defaultDelimiter
	}
	c.Sheet.Granularity = strings.ToLower(strings.TrimSpace(c.Sheet.Granularity))
	if c.Sheet.Granularity == "" {
		c.Sheet.Granularity = defaultGranularity
	}
	if len(c.Sheet.ExpectedHeader) == 0 {
		c.Sheet.ExpectedHeader = defaultExpectedHeader()
	}
}

func (c *Config) normalizeEngine() {
	c.Engine.Binary = strings.TrimSpace(c.Engine.Binary)
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	c.Engine.Profile = strings.ToLower(strings.TrimSpace(c.Engine.Profile))
	if c.Engine.Profile == "" {
		c.Engine.Profile = defaultEngineProfile
	}
	if c.Engine.TimeoutSeconds == 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeout
	}
}

func (c *Config) normalizeModalities() {
	if len(c.Modalities) == 0 {
		c.Modalities = defaultModalities()
		return
	}
	normalized := make([]string, 0, len(c.Modalities))
	seen := map[string]struct{}{}
	for _, modality := range c.Modalities {
		modality = strings.ToUpper(strings.TrimSpace(modality))
		if modality == "" {
			continue
		}
		if _, ok := seen[modality]; ok {
			continue
		}
		seen[modality] = struct{}{}
		normalized = append(normalized, modality)
	}
	c.Modalities = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
