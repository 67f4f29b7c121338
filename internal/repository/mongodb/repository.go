package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

const (
	bikesCollection       = "bikes"
	suppliersCollection   = "suppliers"
	customersCollection   = "customers"
	salesCollection       = "sales"
	inventoriesCollection = "inventories"
	reportsCollection     = "daily_reports"
)

// MongoDBRepository implements repository.Store on MongoDB. Multi-document
// writes run in transactions, so the deployment must be a replica set.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects, pings and ensures the unique indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return open(ctx, client, dbName, logger)
}

// open pings the deployment and ensures the indexes. The client is
// disconnected when either step fails.
func open(ctx context.Context, client *mongo.Client, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	repo := newRepository(client, dbName, logger)

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		repo.disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		repo.disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func newRepository(client *mongo.Client, dbName string, logger *zap.Logger) *MongoDBRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
}

func (r *MongoDBRepository) disconnect(ctx context.Context) {
	if err := r.client.Disconnect(ctx); err != nil {
		r.logger.Warn("failed to disconnect mongodb client", zap.Error(err))
	}
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		bikesCollection: {
			Keys:    bson.D{{Key: "brand", Value: 1}, {Key: "model", Value: 1}, {Key: "color", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("bike_variant"),
		},
		customersCollection: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("customer_email"),
		},
		salesCollection: {
			Keys:    bson.D{{Key: "sale_date", Value: -1}},
			Options: options.Index().SetName("sale_date_desc"),
		},
	}
	for coll, model := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
	}
	r.logger.Debug("mongodb indexes ensured")
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// inTransaction runs fn in a snapshot transaction. The driver retries fn on
// transient transaction errors, so fn must not leak state between attempts.
func (r *MongoDBRepository) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return session.WithTransaction(ctx, fn, txnOpts)
}

// collation makes sorting case-insensitive.
var collation = &options.Collation{Locale: "en", Strength: 2}

func (r *MongoDBRepository) findOne(ctx context.Context, coll, entity, id string, out interface{}) error {
	err := r.coll(coll).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NotFound(entity, id)
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", entity, id, err)
	}
	return nil
}

func (r *MongoDBRepository) replaceOne(ctx context.Context, coll, entity, id string, doc interface{}) error {
	res, err := r.coll(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Conflict("%s %s duplicates an existing record", entity, id)
		}
		return fmt.Errorf("update %s %s: %w", entity, id, err)
	}
	if res.MatchedCount == 0 {
		return models.NotFound(entity, id)
	}
	return nil
}

func (r *MongoDBRepository) CreateBike(ctx context.Context, bike *models.Bike) error {
	if err := r.checkSupplier(ctx, bike.SupplierID); err != nil {
		return err
	}
	if _, err := r.coll(bikesCollection).InsertOne(ctx, bike); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Conflict("bike %s already exists", bike)
		}
		return fmt.Errorf("insert bike: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) GetBike(ctx context.Context, id string) (*models.Bike, error) {
	var bike models.Bike
	if err := r.findOne(ctx, bikesCollection, "bike", id, &bike); err != nil {
		return nil, err
	}
	return &bike, nil
}

func (r *MongoDBRepository) UpdateBike(ctx context.Context, bike *models.Bike) error {
	if err := r.checkSupplier(ctx, bike.SupplierID); err != nil {
		return err
	}
	return r.replaceOne(ctx, bikesCollection, "bike", bike.ID, bike)
}

func (r *MongoDBRepository) DeleteBike(ctx context.Context, id string) error {
	_, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll(bikesCollection).DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("delete bike %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return nil, models.NotFound("bike", id)
		}
		if _, err := r.coll(salesCollection).DeleteMany(sc, bson.M{"bike_id": id}); err != nil {
			return nil, fmt.Errorf("delete sales of bike %s: %w", id, err)
		}
		if _, err := r.coll(inventoriesCollection).DeleteOne(sc, bson.M{"_id": id}); err != nil {
			return nil, fmt.Errorf("delete inventory of bike %s: %w", id, err)
		}
		return nil, nil
	})
	return err
}

func (r *MongoDBRepository) ListBikes(ctx context.Context, filter models.BikeFilter) ([]models.Bike, error) {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"brand": pattern},
			bson.M{"model": pattern},
			bson.M{"type": pattern},
		}
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if filter.InStockOnly {
		query["stock_quantity"] = bson.M{"$gt": 0}
	}
	if filter.SupplierID != "" {
		query["supplier_id"] = filter.SupplierID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "brand", Value: 1}, {Key: "model", Value: 1}}).
		SetCollation(collation)

	var bikes []models.Bike
	if err := r.findAll(ctx, bikesCollection, query, opts, &bikes); err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	return bikes, nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, query interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := r.coll(coll).Find(ctx, query, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (r *MongoDBRepository) checkSupplier(ctx context.Context, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	var supplier models.Supplier
	return r.findOne(ctx, suppliersCollection, "supplier", supplierID, &supplier)
}

func (r *MongoDBRepository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	if _, err := r.coll(suppliersCollection).InsertOne(ctx, supplier); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.findOne(ctx, suppliersCollection, "supplier", id, &supplier); err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *MongoDBRepository) UpdateSupplier(ctx context.Context, supplier *models.Supplier) error {
	return r.replaceOne(ctx, suppliersCollection, "supplier", supplier.ID, supplier)
}

func (r *MongoDBRepository) DeleteSupplier(ctx context.Context, id string) error {
	_, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll(suppliersCollection).DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("delete supplier %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return nil, models.NotFound("supplier", id)
		}
		_, err = r.coll(bikesCollection).UpdateMany(sc,
			bson.M{"supplier_id": id},
			bson.M{"$unset": bson.M{"supplier_id": ""}})
		if err != nil {
			return nil, fmt.Errorf("detach bikes from supplier %s: %w", id, err)
		}
		return nil, nil
	})
	return err
}

func (r *MongoDBRepository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetCollation(collation)

	var suppliers []models.Supplier
	if err := r.findAll(ctx, suppliersCollection, bson.M{}, opts, &suppliers); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *MongoDBRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if _, err := r.coll(customersCollection).InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Conflict("a customer with email %s already exists", customer.Email)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.findOne(ctx, customersCollection, "customer", id, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *MongoDBRepository) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.replaceOne(ctx, customersCollection, "customer", customer.ID, customer)
}

func (r *MongoDBRepository) DeleteCustomer(ctx context.Context, id string) error {
	_, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll(customersCollection).DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("delete customer %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return nil, models.NotFound("customer", id)
		}
		if _, err := r.coll(salesCollection).DeleteMany(sc, bson.M{"customer_id": id}); err != nil {
			return nil, fmt.Errorf("delete sales of customer %s: %w", id, err)
		}
		return nil, nil
	})
	return err
}

func (r *MongoDBRepository) ListCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	query := bson.M{}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetCollation(collation)

	var customers []models.Customer
	if err := r.findAll(ctx, customersCollection, query, opts, &customers); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

type recordedSale struct {
	sale models.Sale
	bike models.Bike
}

// RecordSale decrements stock with a conditional $inc (stock_quantity >= q)
// and inserts the sale inside one transaction.
func (r *MongoDBRepository) RecordSale(ctx context.Context, sale *models.Sale) (*models.Bike, error) {
	result, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var bike models.Bike
		if err := r.findOne(sc, bikesCollection, "bike", sale.BikeID, &bike); err != nil {
			return nil, err
		}
		var customer models.Customer
		if err := r.findOne(sc, customersCollection, "customer", sale.CustomerID, &customer); err != nil {
			return nil, err
		}

		attempt := *sale
		if err := bike.ApplySale(&attempt); err != nil {
			return nil, err
		}

		res, err := r.coll(bikesCollection).UpdateOne(sc,
			bson.M{"_id": bike.ID, "stock_quantity": bson.M{"$gte": attempt.Quantity}},
			bson.M{
				"$inc": bson.M{"stock_quantity": -attempt.Quantity},
				"$set": bson.M{"updated_at": attempt.SaleDate},
			})
		if err != nil {
			return nil, fmt.Errorf("decrement stock of bike %s: %w", bike.ID, err)
		}
		if res.MatchedCount == 0 {
			var current models.Bike
			if err := r.findOne(sc, bikesCollection, "bike", bike.ID, &current); err != nil {
				return nil, err
			}
			return nil, &models.InsufficientStockError{BikeID: bike.ID, Requested: attempt.Quantity, Available: current.StockQuantity}
		}

		if _, err := r.coll(salesCollection).InsertOne(sc, attempt); err != nil {
			return nil, fmt.Errorf("insert sale: %w", err)
		}

		bike.UpdatedAt = attempt.SaleDate
		return recordedSale{sale: attempt, bike: bike}, nil
	})
	if err != nil {
		return nil, err
	}

	recorded := result.(recordedSale)
	*sale = recorded.sale
	r.logger.Debug("sale committed", zap.String("sale_id", sale.ID), zap.String("bike_id", sale.BikeID))
	return &recorded.bike, nil
}

func (r *MongoDBRepository) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	if err := r.findOne(ctx, salesCollection, "sale", id, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *MongoDBRepository) ListSales(ctx context.Context, filter models.SaleFilter) ([]models.Sale, error) {
	query := bson.M{}
	if filter.CustomerID != "" {
		query["customer_id"] = filter.CustomerID
	}
	if filter.BikeID != "" {
		query["bike_id"] = filter.BikeID
	}
	opts := options.Find().SetSort(bson.D{{Key: "sale_date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	var sales []models.Sale
	if err := r.findAll(ctx, salesCollection, query, opts, &sales); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (r *MongoDBRepository) UpdateSaleNotes(ctx context.Context, id, notes string) (*models.Sale, error) {
	var sale models.Sale
	err := r.coll(salesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"notes": notes}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sale)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NotFound("sale", id)
	}
	if err != nil {
		return nil, fmt.Errorf("update notes of sale %s: %w", id, err)
	}
	return &sale, nil
}

func (r *MongoDBRepository) GetInventory(ctx context.Context, bikeID string) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.findOne(ctx, inventoriesCollection, "inventory", bikeID, &inventory); err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *MongoDBRepository) SaveInventory(ctx context.Context, inventory *models.Inventory) error {
	var bike models.Bike
	if err := r.findOne(ctx, bikesCollection, "bike", inventory.BikeID, &bike); err != nil {
		return err
	}
	_, err := r.coll(inventoriesCollection).ReplaceOne(ctx,
		bson.M{"_id": inventory.BikeID}, inventory, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save inventory of bike %s: %w", inventory.BikeID, err)
	}
	return nil
}

func (r *MongoDBRepository) ListInventories(ctx context.Context) ([]models.Inventory, error) {
	var inventories []models.Inventory
	if err := r.findAll(ctx, inventoriesCollection, bson.M{}, options.Find(), &inventories); err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	return inventories, nil
}

type restocked struct {
	bike      models.Bike
	inventory models.Inventory
}

func (r *MongoDBRepository) Restock(ctx context.Context, bikeID string, quantity int, at time.Time) (*models.Bike, *models.Inventory, error) {
	result, err := r.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var bike models.Bike
		err := r.coll(bikesCollection).FindOneAndUpdate(sc,
			bson.M{"_id": bikeID, "stock_quantity": bson.M{"$lte": models.MaxStock - quantity}},
			bson.M{
				"$inc": bson.M{"stock_quantity": quantity},
				"$set": bson.M{"updated_at": at},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&bike)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the bike is gone or the stock has no room for quantity.
			var current models.Bike
			if err := r.findOne(sc, bikesCollection, "bike", bikeID, &current); err != nil {
				return nil, err
			}
			if err := current.CheckRestock(quantity); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("restock bike %s: stock changed concurrently", bikeID)
		}
		if err != nil {
			return nil, fmt.Errorf("restock bike %s: %w", bikeID, err)
		}

		defaults := models.DefaultInventory(bikeID)
		var inventory models.Inventory
		err = r.coll(inventoriesCollection).FindOneAndUpdate(sc,
			bson.M{"_id": bikeID},
			bson.M{
				"$set": bson.M{"last_restocked": at},
				"$setOnInsert": bson.M{
					"minimum_stock": defaults.MinimumStock,
					"maximum_stock": defaults.MaximumStock,
					"reorder_point": defaults.ReorderPoint,
					"notes":         "",
				},
			},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&inventory)
		if err != nil {
			return nil, fmt.Errorf("stamp restock of bike %s: %w", bikeID, err)
		}
		return restocked{bike: bike, inventory: inventory}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	out := result.(restocked)
	return &out.bike, &out.inventory, nil
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.coll(reportsCollection).InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}
