package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"golang.org/x/net/html/charset"
	"gopkg.in/yaml.v3"

	"meshrepeater/internal/domain/models"
	"meshrepeater/internal/domain/ports"
)

// Format - формат файла настроек.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath определяет формат по расширению файла. По умолчанию JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	default:
		return FormatJSON
	}
}

// settingsDocument - сырое содержимое файла. Указатели отличают отсутствующий ключ от нулевого значения.
type settingsDocument struct {
	PrivateKey          *string  `json:"private_key" yaml:"private_key" hcl:"private_key,optional"`
	Name                *string  `json:"name" yaml:"name" hcl:"name,optional"`
	OwnerInfo           *string  `json:"owner_info" yaml:"owner_info" hcl:"owner_info,optional"`
	Regions             []string `json:"regions" yaml:"regions" hcl:"regions,optional"`
	HomeRegion          *string  `json:"home_region" yaml:"home_region" hcl:"home_region,optional"`
	SaveRegions         *bool    `json:"save_regions" yaml:"save_regions" hcl:"save_regions,optional"`
	TxDelay             *float64 `json:"tx_delay" yaml:"tx_delay" hcl:"tx_delay,optional"`
	DirectTxDelay       *float64 `json:"direct_tx_delay" yaml:"direct_tx_delay" hcl:"direct_tx_delay,optional"`
	RxDelay             *float64 `json:"rx_delay" yaml:"rx_delay" hcl:"rx_delay,optional"`
	AdvertInterval      *int     `json:"advert_interval" yaml:"advert_interval" hcl:"advert_interval,optional"`
	FloodAdvertInterval *int     `json:"flood_advert_interval" yaml:"flood_advert_interval" hcl:"flood_advert_interval,optional"`
	GuestPassword       *string  `json:"guest_password" yaml:"guest_password" hcl:"guest_password,optional"`
}

// FileSettingsRepository реализует интерфейс ports.SettingsRepository поверх файла на диске.
type FileSettingsRepository struct{}

// NewFileSettingsRepository создает новый экземпляр FileSettingsRepository.
func NewFileSettingsRepository() ports.SettingsRepository {
	return &FileSettingsRepository{}
}

// Load читает файл настроек и возвращает проверенный RepeaterSettings.
func (r *FileSettingsRepository) Load(path string) (models.RepeaterSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RepeaterSettings{}, fmt.Errorf("ошибка чтения файла настроек: %w", err)
	}

	settings, err := Parse(FormatFromPath(path), data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return models.RepeaterSettings{}, err
	}
	return settings, nil
}

// Parse разбирает документ настроек в заданном формате.
func Parse(format Format, data []byte) (models.RepeaterSettings, error) {
	utf8Data, err := toUTF8(data)
	if err != nil {
		return models.RepeaterSettings{}, &ParseError{Format: format, Err: err}
	}

	var doc settingsDocument
	switch format {
	case FormatJSON:
		err = decodeJSON(utf8Data, &doc)
	case FormatYAML:
		err = decodeYAML(utf8Data, &doc)
	case FormatHCL:
		err = decodeHCL(utf8Data, &doc)
	default:
		return models.RepeaterSettings{}, fmt.Errorf("storage: неизвестный формат %q", format)
	}
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return models.RepeaterSettings{}, fe
		}
		return models.RepeaterSettings{}, &ParseError{Format: format, Err: err}
	}

	return doc.toSettings()
}

var utf8BOM = []byte("\xef\xbb\xbf")

// toUTF8 приводит содержимое к UTF-8. Корректный UTF-8 (с BOM или без) возвращается как есть,
// перекодируются только файлы с BOM другой кодировки (UTF-16 из Windows-редакторов).
// Кодировка без BOM не угадывается: такой файл отклоняется.
func toUTF8(data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("пустой документ")
	}
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	enc, name, certain := charset.DetermineEncoding(data, "text/plain")
	if !certain {
		return nil, errors.New("документ не в кодировке UTF-8 и не содержит BOM")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка перекодировки из %s: %w", name, err)
	}
	out = bytes.TrimPrefix(out, utf8BOM)
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("некорректные данные в кодировке %s", name)
	}
	return out, nil
}

func decodeJSON(data []byte, doc *settingsDocument) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &FieldError{Field: typeErr.Field, Reason: fmt.Sprintf("ожидался тип %s, получено %s", typeErr.Type, typeErr.Value)}
		}
		// encoding/json не экспортирует тип ошибки для неизвестного поля
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return &FieldError{Field: strings.Trim(field, `"`), Reason: "неизвестный ключ"}
		}
		return err
	}
	if dec.More() {
		return errors.New("лишние данные после документа")
	}
	return nil
}

func decodeYAML(data []byte, doc *settingsDocument) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(doc); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return yamlFieldError(data, typeErr)
		}
		return err
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errors.New("лишние документы после первого")
	}
}

var (
	yamlUnknownField = regexp.MustCompile(`^line \d+: field (\S+) not found`)
	yamlErrorLine    = regexp.MustCompile(`^line (\d+):`)
)

// yamlFieldError восстанавливает имя ключа для первой ошибки типа: yaml.v3 сообщает только номер строки.
func yamlFieldError(data []byte, typeErr *yaml.TypeError) *FieldError {
	fe := &FieldError{Reason: strings.Join(typeErr.Errors, "; ")}
	if len(typeErr.Errors) == 0 {
		return fe
	}
	first := typeErr.Errors[0]

	if m := yamlUnknownField.FindStringSubmatch(first); m != nil {
		fe.Field, fe.Reason = m[1], "неизвестный ключ"
		return fe
	}
	m := yamlErrorLine.FindStringSubmatch(first)
	if m == nil {
		return fe
	}
	line, _ := strconv.Atoi(m[1])

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return fe
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return fe
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		if key.Line == line || (value.Line <= line && line <= lastLine(value)) {
			fe.Field = key.Value
			break
		}
	}
	return fe
}

func lastLine(n *yaml.Node) int {
	last := n.Line
	for _, c := range n.Content {
		if l := lastLine(c); l > last {
			last = l
		}
	}
	return last
}

func decodeHCL(data []byte, doc *settingsDocument) error {
	file, diags := hclparse.NewParser().ParseHCL(data, "settings.hcl")
	if diags.HasErrors() {
		return diags
	}
	if diags := gohcl.DecodeBody(file.Body, nil, doc); diags.HasErrors() {
		return &FieldError{Field: hclDiagField(file.Body, diags), Reason: diags.Error()}
	}
	return nil
}

// hclDiagField возвращает имя атрибута, к которому относится первая ошибка.
func hclDiagField(body hcl.Body, diags hcl.Diagnostics) string {
	sb, ok := body.(*hclsyntax.Body)
	if !ok {
		return ""
	}
	for _, d := range diags {
		if d.Severity != hcl.DiagError || d.Subject == nil {
			continue
		}
		for name, attr := range sb.Attributes {
			if attr.SrcRange.ContainsOffset(d.Subject.Start.Byte) {
				return name
			}
		}
	}
	return ""
}

// toSettings проверяет обязательные поля и собирает RepeaterSettings.
func (d *settingsDocument) toSettings() (models.RepeaterSettings, error) {
	var s models.RepeaterSettings
	var err error

	if s.PrivateKey, err = requiredString("private_key", d.PrivateKey); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.Name, err = requiredString("name", d.Name); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.OwnerInfo, err = requiredString("owner_info", d.OwnerInfo); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.GuestPassword, err = requiredString("guest_password", d.GuestPassword); err != nil {
		return models.RepeaterSettings{}, err
	}

	if s.TxDelay, err = requiredDelay("tx_delay", d.TxDelay); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.DirectTxDelay, err = requiredDelay("direct_tx_delay", d.DirectTxDelay); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.RxDelay, err = requiredDelay("rx_delay", d.RxDelay); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.AdvertInterval, err = requiredInterval("advert_interval", d.AdvertInterval); err != nil {
		return models.RepeaterSettings{}, err
	}
	if s.FloodAdvertInterval, err = requiredInterval("flood_advert_interval", d.FloodAdvertInterval); err != nil {
		return models.RepeaterSettings{}, err
	}

	s.Regions = make([]string, 0, len(d.Regions))
	for i, region := range d.Regions {
		if err := checkToken(fmt.Sprintf("regions[%d]", i), region); err != nil {
			return models.RepeaterSettings{}, err
		}
		s.Regions = append(s.Regions, region)
	}
	if d.HomeRegion != nil {
		if err := checkToken("home_region", *d.HomeRegion); err != nil {
			return models.RepeaterSettings{}, err
		}
		s.HomeRegion = *d.HomeRegion
	}
	if d.SaveRegions != nil {
		s.SaveRegions = *d.SaveRegions
	}

	return s, nil
}

func requiredString(field string, v *string) (string, error) {
	if v == nil {
		return "", &FieldError{Field: field, Reason: "обязательный ключ отсутствует"}
	}
	if strings.TrimSpace(*v) == "" {
		return "", &FieldError{Field: field, Reason: "значение не может быть пустым"}
	}
	return *v, nil
}

func requiredDelay(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, &FieldError{Field: field, Reason: "обязательный ключ отсутствует"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &FieldError{Field: field, Reason: "значение должно быть конечным числом"}
	}
	if *v < 0 {
		return 0, &FieldError{Field: field, Reason: "значение не может быть отрицательным"}
	}
	return *v, nil
}

func requiredInterval(field string, v *int) (int, error) {
	if v == nil {
		return 0, &FieldError{Field: field, Reason: "обязательный ключ отсутствует"}
	}
	if *v < 0 {
		return 0, &FieldError{Field: field, Reason: "значение не может быть отрицательным"}
	}
	return *v, nil
}

// checkToken проверяет, что имя региона - одно слово (оно подставляется в команду как аргумент).
func checkToken(field, v string) error {
	if v == "" {
		return &FieldError{Field: field, Reason: "значение не может быть пустым"}
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return &FieldError{Field: field, Reason: "имя региона не может содержать пробелы"}
	}
	return nil
}
