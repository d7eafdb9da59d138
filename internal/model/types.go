package model

// Set is one expansion as returned by the catalog API.
type Set struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Series       string            `json:"series,omitempty"`
	PrintedTotal int               `json:"printedTotal,omitempty"`
	Total        int               `json:"total,omitempty"`
	Legalities   map[string]string `json:"legalities,omitempty"`
	PTCGOCode    string            `json:"ptcgoCode,omitempty"`
	ReleaseDate  string            `json:"releaseDate,omitempty"`
	UpdatedAt    string            `json:"updatedAt,omitempty"`
	Images       *SetImages        `json:"images,omitempty"`
}

type SetImages struct {
	Symbol string `json:"symbol,omitempty"`
	Logo   string `json:"logo,omitempty"`
}

// Card is the full catalog record. Optional fields are nil/empty when the
// card simply doesn't have them (trainers have no HP, basics no evolvesFrom).
type Card struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Supertype              string            `json:"supertype,omitempty"`
	Subtypes               []string          `json:"subtypes,omitempty"`
	Level                  string            `json:"level,omitempty"`
	HP                     string            `json:"hp,omitempty"`
	Types                  []string          `json:"types,omitempty"`
	EvolvesFrom            string            `json:"evolvesFrom,omitempty"`
	EvolvesTo              []string          `json:"evolvesTo,omitempty"`
	Rules                  []string          `json:"rules,omitempty"`
	Abilities              []Ability         `json:"abilities,omitempty"`
	Attacks                []Attack          `json:"attacks,omitempty"`
	Weaknesses             []TypeValue       `json:"weaknesses,omitempty"`
	Resistances            []TypeValue       `json:"resistances,omitempty"`
	RetreatCost            []string          `json:"retreatCost,omitempty"`
	ConvertedRetreatCost   int               `json:"convertedRetreatCost,omitempty"`
	Set                    *Set              `json:"set,omitempty"`
	Number                 string            `json:"number,omitempty"`
	Artist                 string            `json:"artist,omitempty"`
	Rarity                 string            `json:"rarity,omitempty"`
	FlavorText             string            `json:"flavorText,omitempty"`
	NationalPokedexNumbers []int             `json:"nationalPokedexNumbers,omitempty"`
	Legalities             map[string]string `json:"legalities,omitempty"`
	Images                 *CardImages       `json:"images,omitempty"`
	TCGPlayer              *TCGPlayerBlock   `json:"tcgplayer,omitempty"`
	Cardmarket             *CardmarketBlock  `json:"cardmarket,omitempty"`
}

type Ability struct {
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
	Type string `json:"type,omitempty"`
}

type Attack struct {
	Name                string   `json:"name"`
	Cost                []string `json:"cost,omitempty"`
	ConvertedEnergyCost int      `json:"convertedEnergyCost,omitempty"`
	Damage              string   `json:"damage,omitempty"`
	Text                string   `json:"text,omitempty"`
}

// TypeValue is a weakness or resistance, e.g. {Fire, ×2} or {Water, -30}.
type TypeValue struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// TCGPlayerBlock carries USD prices keyed by printing variant
// ("normal", "holofoil", "reverseHolofoil", ...).
type TCGPlayerBlock struct {
	URL     string                  `json:"url,omitempty"`
	Updated string                  `json:"updatedAt,omitempty"`
	Prices  map[string]PriceVariant `json:"prices,omitempty"`
}

type PriceVariant struct {
	Low       *float64 `json:"low,omitempty"`
	Mid       *float64 `json:"mid,omitempty"`
	High      *float64 `json:"high,omitempty"`
	Market    *float64 `json:"market,omitempty"`
	DirectLow *float64 `json:"directLow,omitempty"`
}

// CardmarketBlock carries EUR price figures.
type CardmarketBlock struct {
	URL     string           `json:"url,omitempty"`
	Updated string           `json:"updatedAt,omitempty"`
	Prices  CardmarketPrices `json:"prices"`
}

type CardmarketPrices struct {
	AverageSellPrice *float64 `json:"averageSellPrice,omitempty"`
	LowPrice         *float64 `json:"lowPrice,omitempty"`
	TrendPrice       *float64 `json:"trendPrice,omitempty"`
	Avg1             *float64 `json:"avg1,omitempty"`
	Avg7             *float64 `json:"avg7,omitempty"`
	Avg30            *float64 `json:"avg30,omitempty"`
	ReverseHoloTrend *float64 `json:"reverseHoloTrend,omitempty"`
	ReverseHoloAvg1  *float64 `json:"reverseHoloAvg1,omitempty"`
	ReverseHoloAvg7  *float64 `json:"reverseHoloAvg7,omitempty"`
	ReverseHoloAvg30 *float64 `json:"reverseHoloAvg30,omitempty"`
}
