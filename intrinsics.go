package harmony

// intrinsicID indexes the realm's intrinsics table. A fixed-index array
// bootstraps faster than a string map; intrinsicNames provides the
// name-indexed view for diagnostics.
type intrinsicID int

const (
	intrObjectPrototype intrinsicID = iota
	intrFunctionPrototype
	intrObject
	intrFunction
	intrArray
	intrArrayPrototype
	intrArrayIteratorPrototype
	intrIteratorPrototype
	intrString
	intrStringPrototype
	intrStringIteratorPrototype
	intrNumber
	intrNumberPrototype
	intrBoolean
	intrBooleanPrototype
	intrSymbol
	intrSymbolPrototype
	intrBigInt
	intrBigIntPrototype
	intrMath
	intrJSON
	intrReflect
	intrError
	intrErrorPrototype
	intrTypeError
	intrTypeErrorPrototype
	intrRangeError
	intrRangeErrorPrototype
	intrReferenceError
	intrReferenceErrorPrototype
	intrSyntaxError
	intrSyntaxErrorPrototype
	intrURIError
	intrURIErrorPrototype
	intrEvalError
	intrEvalErrorPrototype
	intrRegExp
	intrRegExpPrototype
	intrPromise
	intrPromisePrototype
	intrGeneratorFunction
	intrGeneratorPrototype
	intrAsyncFunction
	intrThrowTypeError
	intrParseInt
	intrParseFloat

	intrinsicCount
)

var intrinsicNames = [intrinsicCount]string{
	intrObjectPrototype:         "%Object.prototype%",
	intrFunctionPrototype:       "%Function.prototype%",
	intrObject:                  "%Object%",
	intrFunction:                "%Function%",
	intrArray:                   "%Array%",
	intrArrayPrototype:          "%Array.prototype%",
	intrArrayIteratorPrototype:  "%ArrayIteratorPrototype%",
	intrIteratorPrototype:       "%IteratorPrototype%",
	intrString:                  "%String%",
	intrStringPrototype:         "%String.prototype%",
	intrStringIteratorPrototype: "%StringIteratorPrototype%",
	intrNumber:                  "%Number%",
	intrNumberPrototype:         "%Number.prototype%",
	intrBoolean:                 "%Boolean%",
	intrBooleanPrototype:        "%Boolean.prototype%",
	intrSymbol:                  "%Symbol%",
	intrSymbolPrototype:         "%Symbol.prototype%",
	intrBigInt:                  "%BigInt%",
	intrBigIntPrototype:         "%BigInt.prototype%",
	intrMath:                    "%Math%",
	intrJSON:                    "%JSON%",
	intrReflect:                 "%Reflect%",
	intrError:                   "%Error%",
	intrErrorPrototype:          "%Error.prototype%",
	intrTypeError:               "%TypeError%",
	intrTypeErrorPrototype:      "%TypeError.prototype%",
	intrRangeError:              "%RangeError%",
	intrRangeErrorPrototype:     "%RangeError.prototype%",
	intrReferenceError:          "%ReferenceError%",
	intrReferenceErrorPrototype: "%ReferenceError.prototype%",
	intrSyntaxError:             "%SyntaxError%",
	intrSyntaxErrorPrototype:    "%SyntaxError.prototype%",
	intrURIError:                "%URIError%",
	intrURIErrorPrototype:       "%URIError.prototype%",
	intrEvalError:               "%EvalError%",
	intrEvalErrorPrototype:      "%EvalError.prototype%",
	intrRegExp:                  "%RegExp%",
	intrRegExpPrototype:         "%RegExp.prototype%",
	intrPromise:                 "%Promise%",
	intrPromisePrototype:        "%Promise.prototype%",
	intrGeneratorFunction:       "%GeneratorFunction%",
	intrGeneratorPrototype:      "%GeneratorFunction.prototype.prototype%",
	intrAsyncFunction:           "%AsyncFunction%",
	intrThrowTypeError:          "%ThrowTypeError%",
	intrParseInt:                "%parseInt%",
	intrParseFloat:              "%parseFloat%",
}

// Well-known symbols. These are shared across all realms of the process.
var (
	symIterator           = newSymbol("Symbol.iterator", true)
	symAsyncIterator      = newSymbol("Symbol.asyncIterator", true)
	symToPrimitive        = newSymbol("Symbol.toPrimitive", true)
	symToStringTag        = newSymbol("Symbol.toStringTag", true)
	symHasInstance        = newSymbol("Symbol.hasInstance", true)
	symSpecies            = newSymbol("Symbol.species", true)
	symUnscopables        = newSymbol("Symbol.unscopables", true)
	symIsConcatSpreadable = newSymbol("Symbol.isConcatSpreadable", true)
	symMatch              = newSymbol("Symbol.match", true)
	symReplace            = newSymbol("Symbol.replace", true)
	symSearch             = newSymbol("Symbol.search", true)
	symSplit              = newSymbol("Symbol.split", true)
)
