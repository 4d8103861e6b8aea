package db

type Drink struct {
	ID     int64
	Title  string
	Recipe string
}
