// Command autocost extracts vehicle listings from saved ad pages and prints
// their cost-of-ownership estimate and deal verdict offline.
//
// Usage:
//
//	autocost extract --file ad.html --url https://www.leboncoin.fr/ad/voitures/123
//	autocost estimate --file ad.html --url https://www.leboncoin.fr/ad/voitures/123
//	autocost estimate --make Renault --model Clio --year 2019 --price 12500 --fuel Diesel --mileage 85000
//	autocost verdict --make Renault --model Twingo --year 2023 --price 11000 --mileage 45000 --format json
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	app := newApp(os.Stdout, nil)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
