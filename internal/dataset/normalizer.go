package dataset

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"enrollscope/pkg/contracts/domain"
)

// RawRecord is one row of the raw source, keyed by source column name.
// Values are the raw cell text; empty string means a null/absent cell.
type RawRecord map[string]string

// Canonical column keys used by the alias rules.
const (
	colYear                 = "year"
	colState                = "state"
	colMunicipality         = "municipality"
	colRegionalZone         = "regional_zone"
	colInstitution          = "institution"
	colLegalStatus          = "legal_status"
	colProgram              = "program"
	colEvaluationArea       = "evaluation_area"
	colKnowledgeArea        = "knowledge_area"
	colDoctoral             = "doctoral"
	colProfessionalDoctoral = "professional_doctoral"
	colMasters              = "masters"
	colProfessionalMasters  = "professional_masters"
)

// columnRule resolves one canonical column. Resolution is three-tier and
// deterministic: exact names are tried in order, then case-insensitive
// substring patterns in order against the sorted list of observed columns,
// and finally the column is synthesized with fallback (when fallback is
// non-empty; columns without a fallback simply stay absent).
type columnRule struct {
	canonical  string
	exact      []string
	substrings []string
	fallback   string
}

// columnRules is the ordered alias-rule table. Order matters: earlier rules
// claim their source column before later ones are considered.
var columnRules = []columnRule{
	{canonical: colYear, exact: []string{"year", "Ano"}},
	{canonical: colState, exact: []string{"state", "Estado", "UF"}},
	{canonical: colMunicipality, exact: []string{"municipality", "Município", "Municipio"}},
	{
		canonical:  colRegionalZone,
		exact:      []string{"regional_zone", "COREDE"},
		substrings: []string{"corede"},
		fallback:   domain.DefaultRegionalZone,
	},
	{
		canonical:  colInstitution,
		exact:      []string{"institution", "IES"},
		substrings: []string{"ies", "instituição", "instituicao"},
		fallback:   domain.DefaultNotInformed,
	},
	{
		canonical:  colLegalStatus,
		exact:      []string{"legal_status", "Status Jurídico"},
		substrings: []string{"status", "jurídico", "juridico", "categoria"},
		fallback:   domain.DefaultNotInformed,
	},
	{canonical: colProgram, exact: []string{"program", "Programa"}},
	{canonical: colEvaluationArea, exact: []string{"evaluation_area", "Área de Avaliação", "Área Avaliação"}},
	{canonical: colKnowledgeArea, exact: []string{"knowledge_area", "Área de Conhecimento", "Área Conhecimento"}},
	{canonical: colDoctoral, exact: []string{"doctoral", "Doutorado - Matriculado"}},
	{canonical: colProfessionalDoctoral, exact: []string{"professional_doctoral", "Doutorado Profissional - Matriculado"}},
	{canonical: colMasters, exact: []string{"masters", "Mestrado - Matriculado"}},
	{canonical: colProfessionalMasters, exact: []string{"professional_masters", "Mestrado Profissional - Matriculado"}},
}

// Normalizer reconciles raw rows against the canonical enrollment schema.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to the default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize converts raw rows to canonical enrollment records. It is pure:
// the input is not mutated and the same input always yields the same output.
// Missing optional columns are synthesized, never an error.
func (n *Normalizer) Normalize(raw []RawRecord) []domain.EnrollmentRecord {
	resolved := resolveColumns(raw)

	n.logger.Info("normalizing raw records",
		slog.Int("record_count", len(raw)),
		slog.Int("resolved_columns", len(resolved)))

	records := make([]domain.EnrollmentRecord, 0, len(raw))
	missingYears := 0
	for _, row := range raw {
		rec := n.normalizeRow(row, resolved)
		if !rec.YearValid {
			missingYears++
		}
		records = append(records, rec)
	}

	if missingYears > 0 {
		n.logger.Warn("records with unparseable year retained with sentinel",
			slog.Int("count", missingYears))
	}
	return records
}

// normalizeRow builds one canonical record from a raw row.
func (n *Normalizer) normalizeRow(row RawRecord, resolved map[string]string) domain.EnrollmentRecord {
	var rec domain.EnrollmentRecord

	rec.Year, rec.YearValid = ParseYear(stringField(row, resolved, colYear, ""))
	rec.State = stringField(row, resolved, colState, "")
	rec.Municipality = stringField(row, resolved, colMunicipality, "")
	rec.RegionalZone = stringField(row, resolved, colRegionalZone, domain.DefaultRegionalZone)
	rec.Institution = stringField(row, resolved, colInstitution, domain.DefaultNotInformed)
	rec.LegalStatus = stringField(row, resolved, colLegalStatus, domain.DefaultNotInformed)
	rec.Program = stringField(row, resolved, colProgram, "")
	rec.EvaluationArea = stringField(row, resolved, colEvaluationArea, "")
	rec.KnowledgeArea = stringField(row, resolved, colKnowledgeArea, "")
	rec.Doctoral = ParseCount(stringField(row, resolved, colDoctoral, ""))
	rec.ProfessionalDoctoral = ParseCount(stringField(row, resolved, colProfessionalDoctoral, ""))
	rec.Masters = ParseCount(stringField(row, resolved, colMasters, ""))
	rec.ProfessionalMasters = ParseCount(stringField(row, resolved, colProfessionalMasters, ""))

	return rec
}

// resolveColumns maps canonical column keys to the source column that serves
// them. Canonicals with no usable source column map to "" and are served by
// their fallback.
func resolveColumns(raw []RawRecord) map[string]string {
	observed := observedColumns(raw)
	claimed := make(map[string]bool, len(observed))
	resolved := make(map[string]string, len(columnRules))

	for _, rule := range columnRules {
		source := ""

		for _, name := range rule.exact {
			if containsColumn(observed, name) && !claimed[name] {
				source = name
				break
			}
		}

		if source == "" {
			for _, pattern := range rule.substrings {
				for _, col := range observed {
					if claimed[col] {
						continue
					}
					if strings.Contains(strings.ToLower(col), pattern) {
						source = col
						break
					}
				}
				if source != "" {
					break
				}
			}
		}

		if source != "" {
			claimed[source] = true
		}
		resolved[rule.canonical] = source
	}

	return resolved
}

// observedColumns returns the union of column names across all rows, sorted
// for deterministic substring resolution.
func observedColumns(raw []RawRecord) []string {
	seen := make(map[string]bool)
	for _, row := range raw {
		for col := range row {
			seen[col] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func containsColumn(cols []string, name string) bool {
	for _, col := range cols {
		if col == name {
			return true
		}
	}
	return false
}

// stringField reads a resolved column from a row, trimming whitespace and
// substituting the fallback for synthesized columns and null cells.
func stringField(row RawRecord, resolved map[string]string, canonical, fallback string) string {
	source := resolved[canonical]
	if source == "" {
		return fallback
	}
	value := strings.TrimSpace(row[source])
	if value == "" {
		return fallback
	}
	return value
}

// ParseYear is the total conversion function for the year column. It accepts
// plain integers and float renderings of integers ("2019.0"); anything else
// reports a missing year rather than an error.
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if year, err := strconv.Atoi(s); err == nil {
		return year, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return int(f), true
	}
	return 0, false
}

// ParseCount is the total conversion function for enrollment counts: null,
// blank, non-numeric and negative values all collapse to 0.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	return 0
}
