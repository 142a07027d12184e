package predicate

import (
	"fmt"

	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/lists"
	"github.com/dot5enko/offload-filter/ops"
	"github.com/dot5enko/offload-filter/schema"
)

// FilterColumn runs one condition over count values of typ stored in raw
// and merges the surviving positions into merger. indicesCache is scratch
// space of at least count entries. It returns the number of survivors.
//
// Integer columns are first checked against their bounds so that a
// condition keeping all or none of the values skips the kernel. Floats
// always go through the kernel since NaN breaks the bounds ordering.
func FilterColumn(
	c Condition,
	typ schema.FieldType,
	raw []byte,
	count int,
	merger *lists.IndiceUnmerged,
	indicesCache []uint16,
) (int, error) {

	if count > len(indicesCache) {
		return 0, fmt.Errorf("indices cache holds %d entries, %d values given", len(indicesCache), count)
	}

	switch typ {
	case schema.Int8FieldType:
		return filterTyped[int8](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Int16FieldType:
		return filterTyped[int16](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Int32FieldType:
		return filterTyped[int32](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Int64FieldType:
		return filterTyped[int64](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Uint8FieldType:
		return filterTyped[uint8](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Uint16FieldType:
		return filterTyped[uint16](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Uint32FieldType:
		return filterTyped[uint32](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Uint64FieldType:
		return filterTyped[uint64](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Float32FieldType:
		return filterTyped[float32](c, raw, count, merger, indicesCache, typ.IsInteger())
	case schema.Float64FieldType:
		return filterTyped[float64](c, raw, count, merger, indicesCache, typ.IsInteger())
	default:
		return 0, fmt.Errorf("unsupported type %v", typ.String())
	}
}

func filterTyped[T Numeric](
	c Condition,
	raw []byte,
	count int,
	merger *lists.IndiceUnmerged,
	indicesCache []uint16,
	useBounds bool,
) (int, error) {

	if count == 0 {
		merger.With(nil, true, typ.IsInteger())
		return 0, nil
	}

	values := bits.BytesAsSlice[T](raw, count)

	if useBounds {
		match, err := MatchBounds(c, ops.GetMaxMin(values))
		if err != nil {
			return 0, err
		}

		switch match {
		case schema.NoIntersection:
			merger.With(nil, true, typ.IsInteger())
			return 0, nil
		case schema.FullIntersection:
			merger.With(nil, false, typ.IsInteger())
			return count, nil
		}
	}

	var itemsFiltered int

	switch c.Operand {
	case RANGE:
		from, to, err := rangeArguments[T](c)
		if err != nil {
			return 0, err
		}
		itemsFiltered = ops.CompareValuesAreInRange(values, from, to, indicesCache)
	case EQ:
		operand, err := argument[T](c, 0)
		if err != nil {
			return 0, err
		}
		itemsFiltered = ops.CompareNumericValuesAreEqual(values, operand, indicesCache)
	case GT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return 0, err
		}
		itemsFiltered = ops.CompareValuesAreBigger(values, operand, indicesCache)
	case LT:
		operand, err := argument[T](c, 0)
		if err != nil {
			return 0, err
		}
		itemsFiltered = ops.CompareValuesAreSmaller(values, operand, indicesCache)
	default:
		return 0, fmt.Errorf("unsupported operand type=%s while filtering column", c.Operand.String())
	}

	merger.With(indicesCache[:itemsFiltered], false, typ.IsInteger())

	return itemsFiltered, nil
}
