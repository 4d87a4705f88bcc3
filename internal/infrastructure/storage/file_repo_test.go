package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshrepeater/internal/domain/models"
)

const validJSON = `{
  "private_key": "ABC",
  "name": "Node1",
  "owner_info": "Owner",
  "regions": ["US915", "EU868"],
  "home_region": "US915",
  "save_regions": true,
  "tx_delay": 0.5,
  "direct_tx_delay": 0.2,
  "rx_delay": 3,
  "advert_interval": 120,
  "flood_advert_interval": 12,
  "guest_password": "pw123"
}`

const validYAML = `name: Node1
private_key: ABC
owner_info: Owner
regions: [US915, EU868]
home_region: US915
save_regions: true
tx_delay: 0.5
direct_tx_delay: 0.2
rx_delay: 3
advert_interval: 120
flood_advert_interval: 12
guest_password: pw123
`

const validHCL = `
private_key           = "ABC"
name                  = "Node1"
owner_info            = "Owner"
regions               = ["US915", "EU868"]
home_region           = "US915"
save_regions          = true
tx_delay              = 0.5
direct_tx_delay       = 0.2
rx_delay              = 3
advert_interval       = 120
flood_advert_interval = 12
guest_password        = "pw123"
`

func expectedSettings() models.RepeaterSettings {
	return models.RepeaterSettings{
		PrivateKey:          "ABC",
		Name:                "Node1",
		OwnerInfo:           "Owner",
		Regions:             []string{"US915", "EU868"},
		HomeRegion:          "US915",
		SaveRegions:         true,
		TxDelay:             0.5,
		DirectTxDelay:       0.2,
		RxDelay:             3,
		AdvertInterval:      120,
		FloodAdvertInterval: 12,
		GuestPassword:       "pw123",
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"/config/settings.json": FormatJSON,
		"settings.YAML":         FormatYAML,
		"settings.yml":          FormatYAML,
		"repeater.hcl":          FormatHCL,
		"settings":              FormatJSON,
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

// TestLoad_JSON проверяет загрузку корректного файла
func TestLoad_JSON(t *testing.T) {
	repo := NewFileSettingsRepository()

	got, err := repo.Load(writeFile(t, "settings.json", validJSON))
	require.NoError(t, err)
	assert.Equal(t, expectedSettings(), got)
}

func TestLoad_YAML(t *testing.T) {
	got, err := NewFileSettingsRepository().Load(writeFile(t, "settings.yaml", validYAML))
	require.NoError(t, err)
	assert.Equal(t, expectedSettings(), got)
}

func TestLoad_HCL(t *testing.T) {
	got, err := NewFileSettingsRepository().Load(writeFile(t, "settings.hcl", validHCL))
	require.NoError(t, err)
	assert.Equal(t, expectedSettings(), got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewFileSettingsRepository().Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// TestParse_KeyOrderIndependent проверяет, что порядок ключей не влияет на результат
func TestParse_KeyOrderIndependent(t *testing.T) {
	reordered := `{
  "guest_password": "pw123",
  "flood_advert_interval": 12,
  "advert_interval": 120,
  "rx_delay": 3,
  "direct_tx_delay": 0.2,
  "tx_delay": 0.5,
  "save_regions": true,
  "home_region": "US915",
  "regions": ["US915", "EU868"],
  "owner_info": "Owner",
  "name": "Node1",
  "private_key": "ABC"
}`
	a, err := Parse(FormatJSON, []byte(validJSON))
	require.NoError(t, err)
	b, err := Parse(FormatJSON, []byte(reordered))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParse_OptionalKeysOmitted(t *testing.T) {
	doc := `{
  "private_key": "ABC", "name": "Node1", "owner_info": "Owner",
  "tx_delay": 0.5, "direct_tx_delay": 0.2, "rx_delay": 0,
  "advert_interval": 0, "flood_advert_interval": 12, "guest_password": "pw123"
}`
	got, err := Parse(FormatJSON, []byte(doc))
	require.NoError(t, err)

	assert.NotNil(t, got.Regions)
	assert.Empty(t, got.Regions)
	assert.Empty(t, got.HomeRegion)
	assert.False(t, got.SaveRegions)

	got, err = Parse(FormatJSON, []byte(strings.Replace(doc, `"name"`, `"regions": null, "name"`, 1)))
	require.NoError(t, err)
	assert.NotNil(t, got.Regions)
}

func TestParse_BOMAndUTF16(t *testing.T) {
	got, err := Parse(FormatJSON, append([]byte("\xef\xbb\xbf"), validJSON...))
	require.NoError(t, err)
	assert.Equal(t, expectedSettings(), got)

	utf16 := []byte{0xff, 0xfe}
	for _, b := range []byte(validJSON) {
		utf16 = append(utf16, b, 0x00)
	}
	got, err = Parse(FormatJSON, utf16)
	require.NoError(t, err)
	assert.Equal(t, expectedSettings(), got)
}

// TestParse_NonASCIIAfterFirstKilobyte проверяет, что UTF-8 не перекодируется
// независимо от того, где в файле стоит не-ASCII значение.
func TestParse_NonASCIIAfterFirstKilobyte(t *testing.T) {
	regions := make([]string, 150)
	for i := range regions {
		regions[i] = fmt.Sprintf(`"R%03d"`, i)
	}
	body := `"private_key": "ABC", "name": "Node1", "regions": [` + strings.Join(regions, ", ") + `],
"tx_delay": 0.5, "direct_tx_delay": 0.2, "rx_delay": 3, "advert_interval": 120,
"flood_advert_interval": 12, "guest_password": "pw123"`
	owner := `"owner_info": "Иван Петров"`

	ownerFirst := "{" + owner + ",\n" + body + "}"
	ownerLast := "{" + body + ",\n" + owner + "}"
	require.Greater(t, strings.Index(ownerLast, "Иван"), 1024)

	a, err := Parse(FormatJSON, []byte(ownerFirst))
	require.NoError(t, err)
	b, err := Parse(FormatJSON, []byte(ownerLast))
	require.NoError(t, err)

	assert.Equal(t, "Иван Петров", a.OwnerInfo)
	assert.Equal(t, a, b)
}

func TestParse_RejectsLegacyEncodingWithoutBOM(t *testing.T) {
	// "Jos\xe9" - windows-1252, невалидный UTF-8
	doc := strings.Replace(validJSON, `"Node1"`, "\"Jos\xe9\"", 1)
	_, err := Parse(FormatJSON, []byte(doc))

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %T: %v", err, err)
}

// TestParse_Malformed проверяет, что синтаксические ошибки возвращаются как ParseError
func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"empty", FormatJSON, "   "},
		{"broken json", FormatJSON, `{"name": "Node1",`},
		{"not an object", FormatJSON, `["a", "b"]`},
		{"broken yaml", FormatYAML, "name: [Node1\n"},
		{"broken hcl", FormatHCL, `name = "Node1`},
		{"several yaml documents", FormatYAML, validYAML + "---\n" + validYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.format, []byte(tt.doc))
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "got %T: %v", err, err)
			assert.False(t, errors.Is(err, ErrInvalidSettings))
		})
	}
}

// TestParse_FieldErrors проверяет отказ без подстановки значений по умолчанию
func TestParse_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		edit   func(string) string
		field  string
	}{
		{"missing key", FormatJSON, func(s string) string {
			return strings.Replace(s, `"private_key": "ABC",`, "", 1)
		}, "private_key"},
		{"null required", FormatJSON, func(s string) string {
			return strings.Replace(s, `"pw123"`, "null", 1)
		}, "guest_password"},
		{"empty name", FormatJSON, func(s string) string {
			return strings.Replace(s, `"Node1"`, `"  "`, 1)
		}, "name"},
		{"unknown key", FormatJSON, func(s string) string {
			return strings.Replace(s, `"name"`, `"nickname": "x", "name"`, 1)
		}, "nickname"},
		{"wrong type", FormatJSON, func(s string) string {
			return strings.Replace(s, `120`, `"often"`, 1)
		}, "advert_interval"},
		{"negative delay", FormatJSON, func(s string) string {
			return strings.Replace(s, `0.5`, `-1`, 1)
		}, "tx_delay"},
		{"region with space", FormatJSON, func(s string) string {
			return strings.Replace(s, `"EU868"`, `"EU 868"`, 1)
		}, "regions[1]"},
		{"empty home region", FormatJSON, func(s string) string {
			return strings.Replace(s, `"home_region": "US915"`, `"home_region": ""`, 1)
		}, "home_region"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.format, []byte(tt.edit(validJSON)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettings), "got %T: %v", err, err)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

// TestParse_FieldErrorsYAMLAndHCL проверяет, что ошибки YAML и HCL указывают ключ так же, как JSON
func TestParse_FieldErrorsYAMLAndHCL(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
		field  string
	}{
		{"yaml nan delay", FormatYAML, strings.Replace(validYAML, "tx_delay: 0.5", "tx_delay: .nan", 1), "tx_delay"},
		{"yaml inf delay", FormatYAML, strings.Replace(validYAML, "direct_tx_delay: 0.2", "direct_tx_delay: .inf", 1), "direct_tx_delay"},
		{"yaml -inf delay", FormatYAML, strings.Replace(validYAML, "rx_delay: 3", "rx_delay: -.inf", 1), "rx_delay"},
		{"yaml unknown key", FormatYAML, validYAML + "colour: red\n", "colour"},
		{"yaml wrong type", FormatYAML, strings.Replace(validYAML, "advert_interval: 120", "advert_interval: often", 1), "advert_interval"},
		{"yaml wrong type in list", FormatYAML, strings.Replace(validYAML, "regions: [US915, EU868]", "regions:\n  - US915\n  - {a: b}", 1), "regions"},
		{"hcl unknown key", FormatHCL, validHCL + "colour = \"red\"\n", "colour"},
		{"hcl wrong type", FormatHCL, strings.Replace(validHCL, "= 120", `= "often"`, 1), "advert_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.format, []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettings), "got %T: %v", err, err)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestLoad_ParseErrorCarriesPath(t *testing.T) {
	path := writeFile(t, "broken.json", "{")
	_, err := NewFileSettingsRepository().Load(path)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.Contains(t, err.Error(), path)
}
