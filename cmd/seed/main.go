// Command seed loads stock metadata from a CSV file into the stocks
// collection. It is a one-shot tool run before the API serves traffic;
// request handling never creates or mutates metadata records.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stockflow/config"
	"stockflow/logger"
	"stockflow/models"
)

func main() {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	dataPath := flag.String("data", "infra/data/stock_metadata.csv", "Path to the metadata CSV file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	records, err := readMetadata(*dataPath)
	if err != nil {
		log.WithError(err).Error("failed to read metadata file")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.WithError(err).Error("failed to connect to mongo")
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("failed to disconnect from mongo")
		}
	}()

	col := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)

	log.WithFields(logger.Fields{"records": len(records)}).Info("inserting stocks")

	now := time.Now().UTC()
	for _, stock := range records {
		result, err := col.InsertOne(context.Background(), bson.M{
			"company_name": stock.CompanyName,
			"industry":     stock.Industry,
			"symbol":       stock.Symbol,
			"series":       stock.Series,
			"isin_code":    stock.ISINCode,
			"file_format":  stock.FileFormat,
			"created_at":   now,
			"last_updated": now,
		})
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"symbol": stock.Symbol}).Error("failed to insert stock")
			os.Exit(1)
		}
		log.WithFields(logger.Fields{
			"symbol": stock.Symbol,
			"id":     result.InsertedID,
		}).Info("inserted stock")
	}
}

// readMetadata parses the seed CSV. The header row names the stock fields;
// every record must carry a supported file format.
func readMetadata(path string) ([]models.Stock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed metadata csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("metadata csv has no data rows")
	}

	index := map[string]int{}
	for i, name := range records[0] {
		index[name] = i
	}
	for _, required := range []string{"company_name", "industry", "symbol", "series", "isin_code", "file_format"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("metadata csv is missing the %q column", required)
		}
	}

	stocks := make([]models.Stock, 0, len(records)-1)
	for i, record := range records[1:] {
		format, err := models.ParseFileFormat(record[index["file_format"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		stocks = append(stocks, models.Stock{
			CompanyName: record[index["company_name"]],
			Industry:    record[index["industry"]],
			Symbol:      record[index["symbol"]],
			Series:      record[index["series"]],
			ISINCode:    record[index["isin_code"]],
			FileFormat:  format,
		})
	}

	return stocks, nil
}
