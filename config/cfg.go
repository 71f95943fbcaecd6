package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	DocumentConfig struct {
		BookTitle          string            `yaml:"book_title"`
		HeadingStyles      []string          `yaml:"heading_styles" validate:"dive,required"`
		BoldFallback       bool              `yaml:"bold_fallback"`
		MinHeadingFontSize float64           `yaml:"min_heading_font_size" validate:"gte=0"`
		NumberingFixes     map[string]string `yaml:"numbering_fixes" validate:"dive,keys,required,endkeys,required"`
		KeepHeadings       bool              `yaml:"keep_headings"`
		KeepFrontMatter    bool              `yaml:"keep_front_matter"`
		FrontMatterTitle   string            `yaml:"front_matter_title" validate:"required_if=KeepFrontMatter true"`
	}

	TOCConfig struct {
		Enable      bool `yaml:"enable"`
		SearchLimit int  `yaml:"search_limit" validate:"min=1"`
	}

	PostprocessConfig struct {
		Enable         bool `yaml:"enable"`
		MaxSize        int  `yaml:"max_size" validate:"gte=0"`
		Border         int  `yaml:"border" validate:"gte=0"`
		WhiteThreshold int  `yaml:"white_threshold" validate:"min=0,max=255"`
	}

	ImagesConfig struct {
		Convert      []string          `yaml:"convert" validate:"dive,oneof=wmf emf"`
		RasterizeSVG bool              `yaml:"rasterize_svg"`
		Timeout      time.Duration     `yaml:"timeout" validate:"gt=0"`
		Workers      int               `yaml:"workers" validate:"min=1,max=64"`
		Density      int               `yaml:"density" validate:"min=36,max=1200"`
		OfficeBinary string            `yaml:"office_binary"`
		MagickBinary string            `yaml:"magick_binary"`
		Postprocess  PostprocessConfig `yaml:"postprocess"`
	}

	OutputConfig struct {
		Optimize bool `yaml:"optimize"`
	}

	MarkdownConfig struct {
		Enable          bool   `yaml:"enable"`
		Destination     string `yaml:"destination" validate:"required_if=Enable true"`
		SectionTemplate string `yaml:"section_template"`
	}

	DocxConfig struct {
		FixZip bool `yaml:"fix_zip"`
	}

	ExportConfig struct {
		Markdown MarkdownConfig `yaml:"markdown"`
		Docx     DocxConfig     `yaml:"docx"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig `yaml:"document"`
		TOC       TOCConfig      `yaml:"toc"`
		Images    ImagesConfig   `yaml:"images"`
		Output    OutputConfig   `yaml:"output"`
		Export    ExportConfig   `yaml:"export"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	SectionTemplateFieldName TemplateFieldName = "section_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(SectionTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("configuration sanitizing failed: %w", err)
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
