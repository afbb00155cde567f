package localstore

// Schema DDL for the embedded store. Column names keep the camelCase the
// original browser database used; the migration driver owns the mapping to
// the remote snake_case schema.
const (
	createCards = `CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    userId TEXT NOT NULL,
    collectionId TEXT,
    playerName TEXT NOT NULL,
    team TEXT,
    cardYear INTEGER,
    brand TEXT,
    category TEXT,
    condition TEXT,
    gradingCompany TEXT,
    grade REAL,
    purchasePrice REAL,
    currentValue REAL,
    sellPrice REAL,
    purchaseDate TEXT,
    sellDate TEXT,
    notes TEXT,
    imageUrls TEXT,
    createdAt TEXT NOT NULL,
    updatedAt TEXT NOT NULL
);`

	createCollections = `CREATE TABLE IF NOT EXISTS collections (
    id TEXT PRIMARY KEY,
    userId TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    color TEXT,
    icon TEXT,
    isDefault INTEGER NOT NULL DEFAULT 0,
    createdAt TEXT NOT NULL,
    updatedAt TEXT NOT NULL
);`

	createProfile = `CREATE TABLE IF NOT EXISTS profile (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT
);`

	createCardIndexes = `CREATE INDEX IF NOT EXISTS idx_cards_userId ON cards (userId);`
)

var schemaStatements = []string{
	createCards,
	createCollections,
	createProfile,
	createCardIndexes,
}
