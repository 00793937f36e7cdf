package naming

// Vocabulary tables. Entries are lower case; multi-word entries are
// matched with optional dots after each word ("lt. col.").

var precursors = []string{
	"estate of the late",
	"estate of",
	"his excellency",
	"her excellency",
	"his honour",
	"her honour",
	"his honor",
	"her honor",
	"the right honourable",
	"the right honorable",
	"right honourable",
	"right honorable",
	"the honourable",
	"the honorable",
	"the rt hon",
	"rt hon",
	"the hon",
}

// Titles accepted with or without extended titles.
var baseTitles = []string{
	// social
	"mr", "mrs", "ms", "miss", "mx", "master", "messrs", "mesdames",
	"madam", "madame", "mme", "mlle",
	"sir", "dame", "lord", "lady",
	"dr", "doctor", "prof", "professor", "rev", "reverend",
}

// Title groups accepted only with extended titles.
var extendedTitleGroups = map[string][]string{
	"medical": {
		"surgeon", "nurse", "matron", "sister",
	},
	"legal": {
		"judge", "justice", "chief justice", "magistrate",
		"barrister", "solicitor", "attorney", "advocate",
	},
	"police": {
		"constable", "const", "sergeant", "sgt", "detective", "det",
		"det sgt", "detective sergeant", "inspector", "insp",
		"chief inspector", "superintendent", "supt", "commissioner",
	},
	"military": {
		"private", "pte", "corporal", "cpl", "lance corporal",
		"lieutenant", "lt", "captain", "capt", "major", "maj",
		"colonel", "col", "lieutenant colonel", "lt col",
		"brigadier", "brig", "general", "gen", "lieutenant general", "lt gen",
		"major general", "maj gen", "field marshal", "marshal",
		"admiral", "adm", "vice admiral", "rear admiral", "commodore",
		"commander", "cmdr", "lt cmdr", "air commodore", "air marshal",
		"wing commander", "squadron leader", "flight lieutenant", "flt lt",
		"flying officer", "warrant officer", "ensign", "cadet",
	},
	"religious": {
		"bishop", "archbishop", "cardinal", "canon", "deacon", "archdeacon",
		"father", "fr", "brother", "br", "mother", "pastor", "rabbi",
		"imam", "cantor", "chaplain", "elder", "abbot", "monsignor", "msgr",
		"very reverend", "right reverend",
	},
	"academic": {
		"dean", "chancellor", "vice chancellor", "principal",
		"associate professor", "assoc prof", "emeritus professor",
		"lecturer",
	},
	"civic": {
		"baron", "baroness", "count", "countess", "duke", "duchess",
		"earl", "marquis", "marquess", "marchioness", "viscount",
		"viscountess", "prince", "princess",
		"lord mayor", "mayor", "mayoress", "alderman", "councillor", "cr",
		"senator", "sen", "governor", "ambassador", "premier", "minister",
	},
}

// Surname particles that take a trailing space before the next word.
var surnamePrefixes = []string{
	"el", "ap", "ben", "bin",
	"dal", "dalla", "del", "della", "delle", "dello",
	"de", "des", "da", "das", "di", "do", "dos", "du",
	"la", "le", "lo",
	"den", "der", "ten", "ter",
	"van", "von",
	"st", "st.", "ste", "saint",
}

// Surname particles that attach directly to the core ("O'Brien").
var surnameAttachedPrefixes = []string{"d'", "o'"}

// suffixes maps the lower-case form to its canonical spelling.
var suffixes = map[string]string{
	"esq":     "Esq",
	"esquire": "Esquire",
	"jnr":     "Jnr",
	"jr":      "Jr",
	"junior":  "Junior",
	"snr":     "Snr",
	"sr":      "Sr",
	"senior":  "Senior",
	"ii":      "II",
	"iii":     "III",
	"iv":      "IV",
	"v":       "V",
	"vi":      "VI",
	"2nd":     "2nd",
	"3rd":     "3rd",
	"4th":     "4th",
	"obe":     "OBE",
	"mbe":     "MBE",
	"cbe":     "CBE",
	"kbe":     "KBE",
	"ao":      "AO",
	"ac":      "AC",
	"am":      "AM",
	"oam":     "OAM",
	"qc":      "QC",
	"kc":      "KC",
	"vc":      "VC",
}

// macExceptions are surnames the Mac heuristic would wrongly split.
var macExceptions = []string{
	"Machin",
	"Machlin",
	"Machar",
	"Mackle",
	"Macklin",
	"Mackie",
	"Machado",
	"Macevicius",
	"Maciulis",
	"Macias",
}

// fixedCorrections are applied after the Mac/Mc pass regardless of branch.
var fixedCorrections = map[string]string{
	"Macmurdo": "MacMurdo",
}
