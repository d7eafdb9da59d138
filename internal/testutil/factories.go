package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkmbinder/pkmbinder/internal/model"
)

// TestDataFactory provides methods for generating dynamic test data
type TestDataFactory struct {
	rand *rand.Rand
	seq  int
}

// NewTestDataFactory creates a new test data factory with a seeded random generator
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// next returns a counter unique within this factory, so generated IDs
// never collide even when the random fields repeat.
func (f *TestDataFactory) next() int {
	f.seq++
	return f.seq
}

// GenerateTestCardNumber generates a random collector number for testing
func (f *TestDataFactory) GenerateTestCardNumber() string {
	return fmt.Sprintf("%d", f.rand.Intn(300)+1)
}

// GenerateTestSetName generates a random test set name
func (f *TestDataFactory) GenerateTestSetName() string {
	sets := []string{"Test Base Set", "Test Jungle", "Test Fossil", "Test Rocket", "Test Gym"}
	return sets[f.rand.Intn(len(sets))]
}

// GenerateTestCardName generates a random test card name
func (f *TestDataFactory) GenerateTestCardName() string {
	names := []string{"Test Pikachu", "Test Charizard", "Test Blastoise", "Test Venusaur", "Test Mewtwo"}
	return names[f.rand.Intn(len(names))]
}

// GenerateTestRarity generates a random card rarity
func (f *TestDataFactory) GenerateTestRarity() string {
	rarities := []string{"Common", "Uncommon", "Rare", "Rare Holo", "Double Rare", "Illustration Rare"}
	return rarities[f.rand.Intn(len(rarities))]
}

// GenerateTestPrice generates a random market price between $0.50 and $500.00
func (f *TestDataFactory) GenerateTestPrice() float64 {
	cents := f.rand.Intn(49951) + 50
	return float64(cents) / 100
}

// GenerateTestDate generates a random date within the last year
func (f *TestDataFactory) GenerateTestDate() time.Time {
	days := f.rand.Intn(365)
	return time.Now().AddDate(0, 0, -days)
}

// GenerateTestSet generates a set with a factory-unique ID
func (f *TestDataFactory) GenerateTestSet() *model.Set {
	total := f.rand.Intn(140) + 60
	return &model.Set{
		ID:           fmt.Sprintf("ts%d", f.next()),
		Name:         f.GenerateTestSetName(),
		Series:       "Test Series",
		PrintedTotal: total,
		Total:        total,
		ReleaseDate:  f.GenerateTestDate().Format("2006/01/02"),
	}
}

// GenerateTestCard generates a card in its own generated set, priced on
// the normal TCGplayer variant
func (f *TestDataFactory) GenerateTestCard() *model.Card {
	set := f.GenerateTestSet()
	number := f.GenerateTestCardNumber()
	market := f.GenerateTestPrice()
	return &model.Card{
		ID:     fmt.Sprintf("%s-%s", set.ID, number),
		Name:   f.GenerateTestCardName(),
		Number: number,
		Rarity: f.GenerateTestRarity(),
		Set:    set,
		Images: &model.CardImages{
			Small: fmt.Sprintf("https://images.test.local/%s/%s.png", set.ID, number),
		},
		TCGPlayer: &model.TCGPlayerBlock{
			Prices: map[string]model.PriceVariant{
				"normal": {Market: &market},
			},
		},
	}
}
