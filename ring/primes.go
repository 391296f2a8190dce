package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers bellow 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// GenerateNTTPrimes returns n distinct primes q = 1 mod NthRoot,
// searched downward from 2^logQ. The primes are returned in decreasing order.
func GenerateNTTPrimes(logQ, NthRoot, n int) (primes []uint64, err error) {

	if logQ < 2 || logQ > MaxLogModulus {
		return nil, fmt.Errorf("invalid logQ: must be in [2, %d] but is %d", MaxLogModulus, logQ)
	}

	if NthRoot <= 0 || NthRoot&(NthRoot-1) != 0 {
		return nil, fmt.Errorf("invalid NthRoot: must be a power of two but is %d", NthRoot)
	}

	// Largest candidate = 1 mod NthRoot below 2^logQ
	q := uint64(1)<<logQ + 1 - uint64(NthRoot)

	for len(primes) < n {

		if q < uint64(NthRoot) {
			return nil, fmt.Errorf("cannot GenerateNTTPrimes: only %d primes of at most %d bits are 1 mod %d", len(primes), logQ, NthRoot)
		}

		if IsPrime(q) {
			primes = append(primes, q)
		}

		q -= uint64(NthRoot)
	}

	return
}

// NextNTTPrime returns the next NthRoot NTT prime after q.
// The input q must be itself an NTT prime for the given NthRoot.
func NextNTTPrime(q uint64, NthRoot int) (qNext uint64, err error) {

	qNext = q + uint64(NthRoot)

	for !IsPrime(qNext) {

		qNext += uint64(NthRoot)

		if bits.Len64(qNext) > MaxLogModulus {
			return 0, fmt.Errorf("next NTT prime exceeds the maximum bit-size of %d bits", MaxLogModulus)
		}
	}

	return qNext, nil
}
