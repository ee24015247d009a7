package rules

// Builtin rule set for Spanish-language institutional resolutions. This is
// the default pattern library when no external rules file is configured;
// external files carry the same shape and fully replace it.
//
// Section markers follow the canonical document layout:
//
//	RESOLUCIÓN: <code>
//	<title>
//	CONSIDERANDO: Que, ... Que, ...
//	RESUELVE: Artículo PRIMERO.- ... Artículo SEGUNDO.- ...
//	DISPOSICIONES FINALES PRIMERA.- ... SEGUNDA.- ...
//	Dado en ...
//	<signatures>
const builtinVersion = "builtin-2026.1"

const (
	markResolution    = `(?i)\bRESOLUCI[ÓO]N\b[^\n]*`
	markConsiderando  = `(?i)\bCONSIDERANDO\b\s*:?`
	markResuelve      = `(?i)\bRESUELVE\b\s*:?`
	markDisposiciones = `(?i)\bDISPOSICIONES\s+FINALES\b`
	markClosing       = `(?i)\bDado en\b`

	articleOrdinal = `(?:\d+|PRIMERO|SEGUNDO|TERCERO|CUARTO|QUINTO|SEXTO|S[ÉE]PTIMO|OCTAVO|NOVENO|D[ÉE]CIMO)`
	finalOrdinal   = `(?:PRIMERA|SEGUNDA|TERCERA|CUARTA|QUINTA|SEXTA|S[ÉE]PTIMA|OCTAVA|NOVENA|D[ÉE]CIMA)`

	// Capitalized word runs that look like a person's name, accents included
	nameWords = `[A-ZÁÉÍÓÚÑ][a-záéíóúñA-ZÁÉÍÓÚÑ.]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñA-ZÁÉÍÓÚÑ.]+){1,4}`

	honorifics = `(?:Mgtr|MSc|Msc|Ing|Abg|Lcdo|Lcda|Lcd|Dr|Dra|Econ|Arq)\.`
	courtesy   = `(?:Srta|Sra|Sr)\.`
	roleWords  = `(?:RECTORA?|VICERRECTORA?|SECRETARIA|SECRETARIO|DECANA?|PROCURADORA?)`
)

var builtinRules = []*Rule{
	{
		Field: "resolution_number",
		Primary: Pattern{
			ID:   "resolution_number/numbered",
			Expr: `(?i)RESOLUCI[ÓO]N\s+(?:No?|Nro|N[°º])\.?\s*:?\s*((?:[A-ZÁÉÍÓÚÑa-z0-9]+[.-])*\d{1,4}-\d{4})`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "resolution_number/header-colon",
				Expr: `(?i)RESOLUCI[ÓO]N\s*:\s*([^\n]+)`,
			},
			{
				ID:   "resolution_number/bare-code",
				Expr: `\b(\d{2,4}-20\d{2})\b`,
			},
		},
		Normalizer: "resolution_code",
	},
	{
		Field: "issue_date",
		Primary: Pattern{
			ID:   "issue_date/labeled-long",
			Expr: `(?i)Fecha\s*:?\s*(\d{1,2}\s+de\s+[a-záéíóúñ]+\s+de\s+\d{4})`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "issue_date/long",
				Expr: `(?i)\b(\d{1,2}\s+de\s+[a-záéíóúñ]+\s+de\s+\d{4})\b`,
			},
			{
				ID:   "issue_date/numeric",
				Expr: `\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`,
			},
		},
		Normalizer: "date_iso",
	},
	{
		Field:    "session_type",
		Optional: true,
		Primary: Pattern{
			ID:   "session_type/phrase",
			Expr: `(?i)SESI[ÓO]N\s+(ORDINARIA|EXTRAORDINARIA)\b`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "session_type/code",
				Expr: `\b(S[OE])-\d{2,4}\b`,
			},
		},
		Normalizer: "session_type",
	},
	{
		Field:    "approving_authority",
		Optional: true,
		Primary: Pattern{
			// Case-sensitive on purpose: the approving body appears as an
			// all-caps header. Continuation stays on one line so the capture
			// cannot swallow the section keyword that follows the header.
			ID:   "approving_authority/header",
			Expr: `(?:EL|LA)[ \t]+((?:HONORABLE[ \t]+)?(?:CONSEJO|[ÓO]RGANO)(?:[ \t]+(?:DEL?|[A-ZÁÉÍÓÚÑ]{2,}))+)`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "approving_authority/bare",
				Expr: `((?:CONSEJO|[ÓO]RGANO)[ \t]+[A-ZÁÉÍÓÚÑ]{2,}(?:[ \t]+[A-ZÁÉÍÓÚÑ]{2,})?)`,
			},
		},
		Normalizer: "clean_line",
	},
	{
		Field:    "title",
		Optional: true,
		Window: &Window{
			Start: markResolution,
			End:   markConsiderando,
		},
		Primary: Pattern{
			ID:   "title/block",
			Expr: `(?s)(\S.*\S|\S)`,
		},
		Normalizer: "single_line",
	},
	{
		Field:    "recitals",
		Optional: true,
		Multi:    true,
		Window: &Window{
			Start: markConsiderando,
			End:   markResuelve,
		},
		Primary: Pattern{
			ID:   "recitals/que-items",
			Expr: `(?m)^(Que\b[^\n]*)`,
		},
		Normalizer: "clean_line",
	},
	{
		Field:    "clauses",
		Optional: true,
		Multi:    true,
		Window: &Window{
			Start: markResuelve,
			End:   markDisposiciones + `|` + markClosing,
		},
		Primary: Pattern{
			ID:   "clauses/articles",
			Expr: `(?im)^\s*Art(?:[íi]culo)?\.?\s*` + articleOrdinal + `\s*[.\-]+\s*([^\n]+)`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "clauses/numbered-list",
				Expr: `(?m)^\s*\d{1,2}\s*[.)-]\s*([^\n]+)`,
			},
		},
		Normalizer: "clause_text",
	},
	{
		Field:    "final_provisions",
		Optional: true,
		Multi:    true,
		Window: &Window{
			Start: markDisposiciones,
			End:   markClosing,
		},
		Primary: Pattern{
			ID:   "final_provisions/ordinals",
			Expr: `(?m)^\s*(` + finalOrdinal + `\s*[.\-]*\s*[^\n]+)`,
		},
		Normalizer: "provision_text",
	},
	{
		Field:    "participants",
		Optional: true,
		Multi:    true,
		Primary: Pattern{
			ID:   "participants/name-role",
			Expr: `(?:` + honorifics + `|` + courtesy + `)?\s*(` + nameWords + `),?\s+` + roleWords + `\b`,
		},
		Fallbacks: []Pattern{
			{
				ID:   "participants/courtesy-name",
				Expr: courtesy + `\s+(` + nameWords + `)`,
			},
		},
		Normalizer: "person_name",
	},
	{
		Field:    "closing",
		Optional: true,
		Primary: Pattern{
			ID:   "closing/dado-en",
			Expr: `(?i)(Dado en[^\n]*)`,
		},
		Normalizer: "clean_line",
	},
	{
		Field:    "certification",
		Optional: true,
		Primary: Pattern{
			// The secretarial attestation that closes the document, from
			// "En mi calidad" through "Lo certifico."
			ID:   "certification/lo-certifico",
			Expr: `(?s)(En mi calidad\b.*?Lo certifico\.?)`,
		},
		Normalizer: "single_line",
	},
}

// Builtin returns the compiled builtin library. Each call compiles a fresh
// copy so callers cannot alias each other's rule state.
func Builtin() *Library {
	defs := make([]*Rule, len(builtinRules))
	for i, r := range builtinRules {
		cp := *r
		if r.Window != nil {
			w := *r.Window
			cp.Window = &w
		}
		cp.Fallbacks = append([]Pattern(nil), r.Fallbacks...)
		defs[i] = &cp
	}
	lib, err := build(builtinVersion, defs)
	if err != nil {
		// The builtin set is covered by tests; a compile failure here is a
		// programming error
		panic("rules: builtin library failed to compile: " + err.Error())
	}
	return lib
}

// Open loads the library at path, or the builtin set when path is empty
func Open(path string) (*Library, error) {
	if path == "" {
		return Builtin(), nil
	}
	return Load(path)
}
