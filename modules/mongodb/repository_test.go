// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imamangupta/moa-mockup/modules/base"
	"github.com/imamangupta/moa-mockup/shared/logger"
)

func TestBuildURI(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"explicit uri", Options{URI: "mongodb+srv://cluster.example.com", Host: "ignored"}, "mongodb+srv://cluster.example.com"},
		{"defaults", Options{}, "mongodb://localhost:27017"},
		{"credentials", Options{Host: "db", Port: 27018, Username: "u", Password: "p"}, "mongodb://u:p@db:27018"},
		{"username without password", Options{Username: "u"}, "mongodb://localhost:27017"},
		{
			"parameters",
			Options{Host: "db", AuthDatabase: "admin", ReplicaSet: "rs0", TLS: true, DirectConnection: true},
			"mongodb://db:27017?authSource=admin&replicaSet=rs0&tls=true&directConnection=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURI(tt.opts))
		})
	}
}

func TestToBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	got := toBSON(base.Document{
		"owner":   map[string]interface{}{"$oid": oid.Hex()},
		"created": map[string]interface{}{"$date": "2025-01-02T03:04:05Z"},
		"tags":    []interface{}{"a", map[string]interface{}{"k": 1}},
		"nested":  base.Document{"amount": 10},
	})

	assert.Equal(t, oid, got["owner"])
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got["created"])
	assert.Equal(t, bson.A{"a", bson.M{"k": 1}}, got["tags"])
	assert.Equal(t, bson.M{"amount": 10}, got["nested"])
}

func TestToBSON_ExtendedForms(t *testing.T) {
	got := toBSON(base.Document{
		"millis":  map[string]interface{}{"$date": float64(1735787045000)},
		"badOID":  map[string]interface{}{"$oid": "not-hex"},
		"withOID": map[string]interface{}{"$oid": primitive.NewObjectID().Hex(), "label": "x"},
	})

	assert.Equal(t, primitive.DateTime(1735787045000), got["millis"])
	assert.Equal(t, bson.M{"$oid": "not-hex"}, got["badOID"])
	assert.IsType(t, bson.M{}, got["withOID"], "extended forms are single-key objects")
}

func TestInsertBody(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name    string
		doc     base.Document
		wantID  interface{}
		wantErr bool
	}{
		{name: "no id", doc: base.Document{"a": 1}, wantID: nil},
		{name: "string id", doc: base.Document{"_id": "charge-1"}, wantID: "charge-1"},
		{name: "numeric id", doc: base.Document{"_id": float64(42)}, wantID: "42"},
		{name: "extended object id", doc: base.Document{"_id": map[string]interface{}{"$oid": oid.Hex()}}, wantID: oid},
		{name: "composite id", doc: base.Document{"_id": map[string]interface{}{"a": 1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := insertBody(tt.doc)
			if tt.wantErr {
				assert.True(t, errors.Is(err, base.ErrInvalidDocumentID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, body["_id"])
		})
	}
}

func TestToDocument(t *testing.T) {
	oid := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)
	price, err := primitive.ParseDecimal128("19.99")
	require.NoError(t, err)

	doc := toDocument(bson.M{
		"_id":     oid,
		"created": primitive.NewDateTimeFromTime(now),
		"items":   bson.A{oid, "x"},
		"meta":    bson.M{"k": "v"},
		"ordered": primitive.D{{Key: "a", Value: 1}},
		"ts":      primitive.Timestamp{T: 1700000000, I: 3},
		"price":   price,
	})

	assert.Equal(t, oid.Hex(), doc.ID())
	assert.True(t, now.Equal(doc["created"].(time.Time)))
	assert.Equal(t, []interface{}{oid.Hex(), "x"}, doc["items"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, doc["meta"])
	assert.Equal(t, map[string]interface{}{"a": 1}, doc["ordered"])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), doc["ts"])
	assert.Equal(t, "19.99", doc["price"])
}

func TestIDFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"_id": bson.M{"$in": bson.A{oid, oid.Hex()}}}, idFilter(oid.Hex()))
	assert.Equal(t, bson.M{"_id": "charge-1"}, idFilter("charge-1"))
}

func TestSetUpdate(t *testing.T) {
	update := setUpdate(base.Document{"_id": "x", "status": "paid"})
	assert.Equal(t, bson.M{"$set": bson.M{"status": "paid"}}, update)
}

func TestConnect_RequiresDatabase(t *testing.T) {
	_, err := Connect(context.Background(), Options{})
	assert.Error(t, err)
}

// connectForTest returns a client for MONGODB_TEST_URI or skips
func connectForTest(t *testing.T) *Client {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Connect(ctx, Options{
		URI:            uri,
		Database:       "moduled_test",
		ConnectTimeout: 2 * time.Second,
		Logger:         logger.Discard(),
	})
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	t.Cleanup(func() { _ = c.Disconnect(context.Background()) })
	return c
}

func TestRepository_Integration(t *testing.T) {
	c := connectForTest(t)
	ctx := context.Background()

	repo := c.Repository("charges_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = repo.collection.Drop(context.Background()) })

	created, err := repo.Create(ctx, base.Document{"amount": int32(100), "status": "pending"})
	require.NoError(t, err)
	id := created.ID()
	require.NotEmpty(t, id)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", found["status"])

	updated, err := repo.Update(ctx, id, base.Document{"status": "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", updated["status"])

	_, err = repo.Create(ctx, base.Document{"_id": "manual", "status": "paid"})
	require.NoError(t, err)

	paid, err := repo.Find(ctx, base.Document{"status": "paid"})
	require.NoError(t, err)
	assert.Len(t, paid, 2)

	one, err := repo.FindOneAndUpdate(ctx, base.Document{"_id": "manual"}, base.Document{"status": "refunded"})
	require.NoError(t, err)
	assert.Equal(t, "refunded", one["status"])

	deleted, err := repo.FindByIDAndDelete(ctx, "manual")
	require.NoError(t, err)
	assert.Equal(t, "manual", deleted.ID())

	removed, err := repo.DeleteMany(ctx, base.Document{"status": "paid"})
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	_, err = repo.FindByID(ctx, id)
	assert.True(t, errors.Is(err, base.ErrDocumentNotFound))

	_, err = repo.FindOneAndDelete(ctx, base.Document{"status": "paid"})
	assert.True(t, errors.Is(err, base.ErrDocumentNotFound))

	var _ base.Repository = repo
}
