package market

const TopicEntityChanged = "market.entity.changed"

// Partition key = entity:id, so every event for one row keeps its order.
func PartitionKey(entity string, id int64) []byte { return []byte(EntityKey(entity, id)) }
