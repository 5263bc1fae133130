// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imamangupta/moa-mockup/modules/base"
)

// Writes accept the single-key extended JSON forms {"$oid": hex} and
// {"$date": RFC 3339 string or epoch milliseconds}. Reads flatten driver
// types: ObjectIDs become hex strings and DateTimes become UTC time.Time.

// toBSON converts a document into a filter or write body
func toBSON(doc base.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = encodeValue(v)
	}
	return out
}

// insertBody is toBSON for InsertOne. Scalar ids are stored under their
// string key so idFilter finds them again.
func insertBody(doc base.Document) (bson.M, error) {
	body := toBSON(doc)
	switch body["_id"].(type) {
	case nil, primitive.ObjectID:
		return body, nil
	}
	id, err := doc.ResolveID()
	if err != nil {
		return nil, err
	}
	body["_id"] = id
	return body, nil
}

func encodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case base.Document:
		return encodeObject(val)
	case map[string]interface{}:
		return encodeObject(val)
	case []interface{}:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

func encodeObject(obj map[string]interface{}) interface{} {
	if len(obj) == 1 {
		if v, ok := extendedValue(obj); ok {
			return v
		}
	}
	return toBSON(obj)
}

func extendedValue(obj map[string]interface{}) (interface{}, bool) {
	if hex, ok := obj["$oid"].(string); ok {
		oid, err := primitive.ObjectIDFromHex(hex)
		return oid, err == nil
	}
	switch date := obj["$date"].(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, date)
		return t, err == nil
	case float64:
		return primitive.DateTime(int64(date)), true
	case int64:
		return primitive.DateTime(date), true
	}
	return nil, false
}

// toDocument flattens a decoded document
func toDocument(doc bson.M) base.Document {
	out := make(base.Document, len(doc))
	for k, v := range doc {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case primitive.Decimal128:
		return val.String()
	case primitive.Binary:
		return val.Data
	case bson.M:
		return map[string]interface{}(toDocument(val))
	case primitive.D:
		out := make(map[string]interface{}, len(val))
		for _, elem := range val {
			out[elem.Key] = decodeValue(elem.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = decodeValue(item)
		}
		return out
	default:
		return v
	}
}

// idFilter matches a document whose _id is either the ObjectID with hex id or the string id
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

// setUpdate builds a $set update from data, leaving _id alone
func setUpdate(data base.Document) bson.M {
	set := toBSON(data)
	delete(set, "_id")
	return bson.M{"$set": set}
}
