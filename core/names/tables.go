package names

// defaultSlugs maps churchofjesuschrist.org URL slugs to abbreviations.
var defaultSlugs = map[string]string{
	// Old Testament
	"gen": "Gen.", "ex": "Ex.", "lev": "Lev.", "num": "Num.", "deut": "Deut.",
	"josh": "Josh.", "judg": "Judg.", "ruth": "Ruth",
	"1-sam": "1 Sam.", "2-sam": "2 Sam.", "1-kgs": "1 Kgs.", "2-kgs": "2 Kgs.",
	"1-chr": "1 Chr.", "2-chr": "2 Chr.", "ezra": "Ezra", "neh": "Neh.",
	"esth": "Esth.", "job": "Job", "ps": "Ps.", "prov": "Prov.", "eccl": "Eccl.",
	"song": "Song.", "isa": "Isa.", "jer": "Jer.", "lam": "Lam.", "ezek": "Ezek.",
	"dan": "Dan.", "hosea": "Hosea", "joel": "Joel", "amos": "Amos", "obad": "Obad.",
	"jonah": "Jonah", "micah": "Micah", "nahum": "Nahum", "hab": "Hab.",
	"zeph": "Zeph.", "hag": "Hag.", "zech": "Zech.", "mal": "Mal.",

	// New Testament
	"matt": "Matt.", "mark": "Mark", "luke": "Luke", "Luke": "Luke",
	"john": "John", "acts": "Acts", "rom": "Rom.",
	"1-cor": "1 Cor.", "2-cor": "2 Cor.", "gal": "Gal.", "eph": "Eph.",
	"philip": "Philip.", "col": "Col.", "1-thes": "1 Thes.", "2-thes": "2 Thes.",
	"1-tim": "1 Tim.", "2-tim": "2 Tim.", "titus": "Titus", "philem": "Philem.",
	"heb": "Heb.", "james": "James", "1-pet": "1 Pet.", "2-pet": "2 Pet.",
	"1-jn": "1 Jn.", "2-jn": "2 Jn.", "3-jn": "3 Jn.", "jude": "Jude", "rev": "Rev.",

	// Book of Mormon
	"1-ne": "1 Ne.", "2-ne": "2 Ne.", "jacob": "Jacob", "enos": "Enos",
	"jarom": "Jarom", "omni": "Omni", "w-of-m": "W of M", "mosiah": "Mosiah",
	"alma": "Alma", "hel": "Hel.", "3-ne": "3 Ne.", "4-ne": "4 Ne.",
	"morm": "Morm.", "ether": "Ether", "moro": "Moro.",

	// Doctrine and Covenants, Pearl of Great Price
	"dc":    "D&C",
	"moses": "Moses", "abr": "Abr.", "js-m": "JS—M", "js-h": "JS—H", "a-of-f": "A of F",
}

// defaultFullNames maps abbreviations to the book names used in the corpora.
var defaultFullNames = map[string]string{
	"Gen.": "Genesis", "Ex.": "Exodus", "Lev.": "Leviticus", "Num.": "Numbers",
	"Deut.": "Deuteronomy", "Josh.": "Joshua", "Judg.": "Judges", "Ruth": "Ruth",
	"1 Sam.": "1 Samuel", "2 Sam.": "2 Samuel", "1 Kgs.": "1 Kings", "2 Kgs.": "2 Kings",
	"1 Chr.": "1 Chronicles", "2 Chr.": "2 Chronicles", "Ezra": "Ezra",
	"Neh.": "Nehemiah", "Esth.": "Esther", "Job": "Job", "Ps.": "Psalms",
	"Prov.": "Proverbs", "Eccl.": "Ecclesiastes", "Song.": "Song of Solomon",
	"Isa.": "Isaiah", "Jer.": "Jeremiah", "Lam.": "Lamentations", "Ezek.": "Ezekiel",
	"Dan.": "Daniel", "Hosea": "Hosea", "Joel": "Joel", "Amos": "Amos",
	"Obad.": "Obadiah", "Jonah": "Jonah", "Micah": "Micah", "Nahum": "Nahum",
	"Hab.": "Habakkuk", "Zeph.": "Zephaniah", "Hag.": "Haggai",
	"Zech.": "Zechariah", "Mal.": "Malachi",

	"Matt.": "Matthew", "Mark": "Mark", "Luke": "Luke", "John": "John", "Acts": "Acts",
	"Rom.": "Romans", "1 Cor.": "1 Corinthians", "2 Cor.": "2 Corinthians",
	"Gal.": "Galatians", "Eph.": "Ephesians", "Philip.": "Philippians",
	"Col.": "Colossians", "1 Thes.": "1 Thessalonians", "2 Thes.": "2 Thessalonians",
	"1 Tim.": "1 Timothy", "2 Tim.": "2 Timothy", "Titus": "Titus",
	"Philem.": "Philemon", "Heb.": "Hebrews", "James": "James",
	"1 Pet.": "1 Peter", "2 Pet.": "2 Peter", "1 Jn.": "1 John", "2 Jn.": "2 John",
	"3 Jn.": "3 John", "Jude": "Jude", "Rev.": "Revelation",

	"1 Ne.": "1 Nephi", "2 Ne.": "2 Nephi", "Jacob": "Jacob", "Enos": "Enos",
	"Jarom": "Jarom", "Omni": "Omni", "W of M": "Words of Mormon",
	"Mosiah": "Mosiah", "Alma": "Alma", "Hel.": "Helaman", "3 Ne.": "3 Nephi",
	"4 Ne.": "4 Nephi", "Morm.": "Mormon", "Ether": "Ether", "Moro.": "Moroni",

	"D&C":    "Doctrine and Covenants",
	"Moses":  "Moses",
	"Abr.":   "Abraham",
	"JS—M":   "Joseph Smith—Matthew",
	"JS—H":   "Joseph Smith—History",
	"A of F": "Articles of Faith",
}

// defaultFiles routes abbreviations to corpus files.
var defaultFiles = func() map[string]string {
	files := make(map[string]string)
	route := func(file string, books ...string) {
		for _, b := range books {
			files[b] = file
		}
	}
	route(OldTestament,
		"Gen.", "Ex.", "Lev.", "Num.", "Deut.", "Josh.", "Judg.", "Ruth",
		"1 Sam.", "2 Sam.", "1 Kgs.", "2 Kgs.", "1 Chr.", "2 Chr.", "Ezra", "Neh.",
		"Esth.", "Job", "Ps.", "Prov.", "Eccl.", "Song.", "Isa.", "Jer.", "Lam.",
		"Ezek.", "Dan.", "Hosea", "Joel", "Amos", "Obad.", "Jonah", "Micah", "Nahum",
		"Hab.", "Zeph.", "Hag.", "Zech.", "Mal.")
	route(NewTestament,
		"Matt.", "Mark", "Luke", "John", "Acts", "Rom.", "1 Cor.", "2 Cor.", "Gal.",
		"Eph.", "Philip.", "Col.", "1 Thes.", "2 Thes.", "1 Tim.", "2 Tim.", "Titus",
		"Philem.", "Heb.", "James", "1 Pet.", "2 Pet.", "1 Jn.", "2 Jn.", "3 Jn.",
		"Jude", "Rev.")
	route(BookOfMormon,
		"1 Ne.", "2 Ne.", "Jacob", "Enos", "Jarom", "Omni", "W of M", "Words of Mormon",
		"Mosiah", "Alma", "Hel.", "3 Ne.", "4 Ne.", "Morm.", "Ether", "Moro.")
	route(DoctrineAndCovenants, "D&C")
	route(PearlOfGreatPrice, "Moses", "Abr.", "JS—M", "JS—H", "A of F")
	return files
}()
