package ring

// Reduce evaluates p2 = p1 mod Modulus, for p1 of any value.
func (r Ring) Reduce(p1, p2 []uint64) {
	q, brc := r.Modulus, r.BRedConstant
	for i := range p2[:r.N] {
		p2[i] = BRedAdd(p1[i], q, brc)
	}
}

// Add evaluates p3 = p1 + p2 mod Modulus.
func (r Ring) Add(p1, p2, p3 []uint64) {
	q := r.Modulus
	for i := range p3[:r.N] {
		p3[i] = CRed(p1[i]+p2[i], q)
	}
}

// Sub evaluates p3 = p1 - p2 mod Modulus.
func (r Ring) Sub(p1, p2, p3 []uint64) {
	q := r.Modulus
	for i := range p3[:r.N] {
		p3[i] = CRed(p1[i]+q-p2[i], q)
	}
}

// Neg evaluates p2 = -p1 mod Modulus.
func (r Ring) Neg(p1, p2 []uint64) {
	q := r.Modulus
	for i := range p2[:r.N] {
		p2[i] = CRed(q-p1[i], q)
	}
}

// MForm evaluates p2 = p1 * 2^64 mod Modulus.
func (r Ring) MForm(p1, p2 []uint64) {
	q, brc := r.Modulus, r.BRedConstant
	for i := range p2[:r.N] {
		p2[i] = MForm(p1[i], q, brc)
	}
}

// IMForm evaluates p2 = p1 * 2^-64 mod Modulus.
func (r Ring) IMForm(p1, p2 []uint64) {
	q, mrc := r.Modulus, r.MRedConstant
	for i := range p2[:r.N] {
		p2[i] = IMForm(p1[i], q, mrc)
	}
}

// MulCoeffsMontgomery evaluates p3 = p1 * p2 * 2^-64 mod Modulus.
func (r Ring) MulCoeffsMontgomery(p1, p2, p3 []uint64) {
	q, mrc := r.Modulus, r.MRedConstant
	for i := range p3[:r.N] {
		p3[i] = MRed(p1[i], p2[i], q, mrc)
	}
}

// MulCoeffsMontgomeryThenAdd evaluates p3 = p3 + p1 * p2 * 2^-64 mod Modulus.
func (r Ring) MulCoeffsMontgomeryThenAdd(p1, p2, p3 []uint64) {
	q, mrc := r.Modulus, r.MRedConstant
	for i := range p3[:r.N] {
		p3[i] = CRed(p3[i]+MRed(p1[i], p2[i], q, mrc), q)
	}
}

// MulScalar evaluates p2 = p1 * scalar mod Modulus.
func (r Ring) MulScalar(p1 []uint64, scalar uint64, p2 []uint64) {
	q, brc := r.Modulus, r.BRedConstant
	s := MForm(BRedAdd(scalar, q, brc), q, brc)
	for i := range p2[:r.N] {
		p2[i] = MRed(p1[i], s, q, r.MRedConstant)
	}
}
